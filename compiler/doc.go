/*

Process of compilation

Recording (jit) ->
	Compile: acquire backend ->
Playback (playback) ->
	replay mementos in creation order ->
Native Tree (tree) ->
	assign source locations, finalize functions ->
Lowered C (back) ->
	cc -S (toolchain) ->
Assembly Text (fake.s) ->
	cc -shared (toolchain) ->
Shared Object (fake.so) ->
	dlopen (loader) ->
Result

Recording is private to one Context and needs no locking.
Everything from replay to dlopen runs under the single backend lock.

*/
package compiler
