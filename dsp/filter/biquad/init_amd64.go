//go:build amd64 && !purego

package biquad

import (
	_ "github.com/cwbudde/algo-rtfilter/dsp/filter/biquad/internal/arch/amd64/unrolled" // register unrolled backend
	_ "github.com/cwbudde/algo-rtfilter/dsp/filter/biquad/internal/arch/generic"        // register generic backend
	_ "github.com/cwbudde/algo-rtfilter/dsp/filter/biquad/internal/arch/registry"       // initialize backend registry
)
