// SPDX-License-Identifier: EPL-2.0

package voxenc

import "fmt"

// State is the stage a Job is in.
//
//	Idle -> Decoding -> Interpreting -> Assembled -> Encoding -> Done
//
// Failed can be entered from any state that is not terminal. Jobs started
// with StartPCM skip Decoding.
type State int

const (
	Idle State = iota
	Decoding
	Interpreting
	Assembled
	Encoding
	Done
	Failed
)

var stateNames = [...]string{
	Idle:         "idle",
	Decoding:     "decoding",
	Interpreting: "interpreting",
	Assembled:    "assembled",
	Encoding:     "encoding",
	Done:         "done",
	Failed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}
