/*
Package reconcile implements the fixed-point loop that brings one Peer's
integrated set up to date with another's: probe heads, compute what is
missing, fetch it, integrate, repeat until nothing is missing or no
progress is made. Sync runs the loop in one direction; Bisync runs it in
both.
*/
package reconcile
