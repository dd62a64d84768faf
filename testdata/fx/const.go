// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fx

// Cancellation ids of TestCancelerImplementation.
const (
	T_FATAL_IF_NOT = iota
	T_FATAL_ON
	T_FATAL
	T_FATALF
	S_INIT_FATAL
	S_INIT_FATALF
	S_INIT_FATAL_ON
	S_FINAL_FATAL
	S_FINAL_FATALF
	S_FINAL_FATAL_ON
)
