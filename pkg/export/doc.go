// Package export writes power and patch reports as CSV and HTML tables.
//
// The HTML output is a self-contained fragment styled like the printable
// lists of the layout editor: a dark header row, striped patch rows, one
// shaded separator row per circuit and a highlighted block for unpowered
// equipment. CSV output has one header row followed by one record per
// fixture or per outlet.
package export
