// Package render writes a computed atlas as text.
//
// The XML form keeps the tag layout consumed by the Conley-Morse database
// tools:
//
//	<atlas>
//	  <dimension>
//	  <phasespace><bounds><lower/><upper/></bounds></phasespace>
//	  <gamma><lower/><upper/></gamma>
//	  <listboxes>
//	    <box><bounds><lower/><upper/></bounds><sigma><lower/><upper/></sigma></box>
//	    ...
//	  </listboxes>
//	</atlas>
//
// Vectors are whitespace-separated numbers in variable order; integral
// values keep a trailing ".0". The JSON form carries the same content plus
// variable names, the region ordering and the partition thresholds.
package render
