/*
Package sfo decodes the SFO text report written by the Poisson/Superfish
postprocessors into a typed Report.

Decoding runs in three stages:

 1. Segment splits the text into groups at dashed separator lines. The first
    group always carries the label "header"; every other group is labelled by
    the first non-blank line after its separator.
 2. Classify maps a group label to a Kind through an ordered list of prefix
    rules, and Interpret decodes the group body into a Section (Summary,
    WallSegment, Header, BeamEnergy or RawGroup).
 3. Parse assembles the sections into a Report and then runs the single
    cross-group derivation: the beam energy V0 overrides the summary's
    kinetic_energy.

Two separator conventions exist in the wild and are selected through
SeparatorMode. ModeCompact treats any line starting with a run of 19 dashes
as a separator and drops blank lines. ModeFixedWidth only accepts a line of
exactly 81 dashes and keeps blank lines in group bodies. ModeAuto picks one of
the two per input and never mixes them.

Every parse is self-contained: package-level tables are read-only, so
independent reports can be parsed concurrently.
*/
package sfo
