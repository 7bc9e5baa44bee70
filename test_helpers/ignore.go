package test_helpers

import (
	"github.com/brunokim/sasp/logic"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	// IgnoreUnexported compares terms by their public structure, keeping var suffixes.
	IgnoreUnexported = cmp.Options{
		cmp.AllowUnexported(logic.Var{}),
		cmpopts.IgnoreUnexported(logic.Comp{}),
	}
)
