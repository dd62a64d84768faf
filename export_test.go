// Copyright (c) 2022 Stephan Lukits. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package gospec

// ContainsErr default message for failed 'Contains'-assertion.
const ContainsErr = "doesn't contain"

// MatchedErr default message for failed 'Matched'-assertion.
const MatchedErr = "doesn't match"

// ErrIsErr default message for failed "ErrIs"-assertion
const ErrIsErr = errIsErr

// PanicsErr default message for failed "Panics"-assertion
const PanicsErr = panicsErr

// WithinErr default message for failed "Within"-assertion
const WithinErr = withinErr

// FalseErr default message for failed 'false'-assertion.
const FalseErr = falseErr

// TrueErr default message for failed 'true'-assertion.
const TrueErr = trueErr
