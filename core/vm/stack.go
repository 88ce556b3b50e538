// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package vm

import "github.com/holiman/uint256"

// stackLimit is the maximum number of 256-bit words a call frame's stack
// may hold (spec.md §4.1).
const stackLimit = 1024

// Stack is a call frame's 256-bit-word operand stack.
type Stack struct {
	data []uint256.Int
}

func newStack() *Stack { return &Stack{data: make([]uint256.Int, 0, 16)} }

func (s *Stack) push(v *uint256.Int) { s.data = append(s.data, *v) }

func (s *Stack) pop() uint256.Int {
	n := len(s.data) - 1
	v := s.data[n]
	s.data = s.data[:n]
	return v
}

func (s *Stack) len() int { return len(s.data) }

// peek returns a pointer to the n-th item from the top (0 is the top).
func (s *Stack) peek(n int) *uint256.Int { return &s.data[len(s.data)-1-n] }

func (s *Stack) swap(n int) {
	top := len(s.data) - 1
	s.data[top], s.data[top-n] = s.data[top-n], s.data[top]
}

func (s *Stack) dup(n int) {
	v := s.data[len(s.data)-n]
	s.push(&v)
}
