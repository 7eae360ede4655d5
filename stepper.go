package qtm

import (
	"golang.org/x/sync/errgroup"
)

/*
stepper computes dst = U*src. Rows are independent, so above the threshold
the row range is cut into one contiguous slab per worker and each slab is
written by exactly one goroutine. The result is identical to the serial
product.
*/
type stepper struct {
	workers   int
	threshold int
}

func newStepper(config *Config) *stepper {
	return &stepper{
		workers:   max(config.Workers, 1),
		threshold: config.ParallelThreshold,
	}
}

func (s *stepper) apply(op *Operator, dst, src []complex128) error {
	n := op.Dim()
	if s.workers == 1 || n < s.threshold || n < s.workers {
		op.applyRows(dst, src, 0, n)
		return nil
	}

	slab := (n + s.workers - 1) / s.workers

	var g errgroup.Group
	g.SetLimit(s.workers)

	for lo := 0; lo < n; lo += slab {
		hi := min(lo+slab, n)
		g.Go(func() error {
			op.applyRows(dst, src, lo, hi)
			return nil
		})
	}

	return g.Wait()
}
