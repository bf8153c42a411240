// Package varmint provides tagged-variant record types ("ADTs") and
// structural pattern matching over them.
//
// The value model is in package 'adt', the pattern matcher is in
// package 'match', and the ordered case dispatcher is in package
// 'cases'.  Some command-line tools are in 'cmd'.
package varmint
