// Package layout reads and writes the layout files of the stage editor and
// converts them into [network.Snapshot] values for the engine.
//
// # File Format
//
// A layout is a JSON object with the placed equipment, the venue's outlets
// and the wires between them:
//
//	{
//	  "venue": {"outlets": [{"instance_id": "outlet_1a2b3c4d",
//	            "info": {"x": 0, "y": 0, "circuit_id": "A-1",
//	                     "tap_capacity": 1500, "circuit_capacity": 2000}}]},
//	  "equipment_items": [{"instance_id": "inst_5e6f7a8b", "type_id": "wash_led",
//	            "x": 120, "y": 40,
//	            "dmx_data": {"universe": 1, "address": 1, "mode_name": "4ch"}}],
//	  "wires": [{"start_item_id": "outlet_1a2b3c4d", "end_item_id": "inst_5e6f7a8b",
//	            "points": [{"x": 120, "y": 0}], "wire_category": "power"}]
//	}
//
// Keys the engine does not use (colours, z order, walls) are preserved when
// a document is written back.
//
// # Defaults
//
// Missing outlet fields take the editor defaults: circuit "Unknown", tap
// capacity 1500 W and circuit capacity 2000 W. Equipment without DMX data
// is patched at universe 1, address 1, in the first mode of its type. Files
// from before DMX data existed carry a bare "channel" number, read as an
// address on universe 1. A wire without a category is a DMX wire.
//
// # Tolerance
//
// Equipment whose type is missing from the catalog, and wires whose
// endpoints are missing or identical, are skipped with a warning, as the
// editor does when opening such a file. Out-of-range patch values and
// negative capacities are errors.
package layout
