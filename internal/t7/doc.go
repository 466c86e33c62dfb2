/*
Package t7 reads and writes the T7 grid tables produced by the Poisson/Superfish
SF7 interpolation program.

A T7 file is plain text: a short header of whitespace-separated numbers
followed by one row per grid point. Two header shapes exist and they are
selected explicitly through Variant, never guessed:

	Oscillating (Superfish):        Static (Poisson):
	  zmin zmax nz-1                  rmin rmax nr-1
	  freq(MHz)                       zmin zmax nz-1
	  rmin rmax nr-1
	  rows: Ez Er E Hphi              rows: Er Ez  (or Br Bz)

In both shapes the rows iterate the second header axis in the outer loop and
the first header axis in the inner loop. The loaded fields are always indexed
[ir][iz], so a static table is transposed on read and back again on write.
*/
package t7
