package qtm

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given the write-ones machine on a four cell tape", t, func() {
		op, g := mustBuild(writeOnes, 4)
		ix, _ := NewIndexer(g)

		Convey("The operator should cover the full configuration space", func() {
			So(g.NumStates, ShouldEqual, 1)
			So(op.Dim(), ShouldEqual, 4*81)
			So(op.Geometry(), ShouldResemble, g)
		})

		Convey("Reading 0 at cell 0 should write 1 and move right", func() {
			src, _ := ix.Encode(0, 0, []int{0, 0, 0, 2})
			dst, _ := ix.Encode(1, 0, []int{1, 0, 0, 2})
			So(op.At(dst, src), ShouldEqual, complex(1, 0))
			So(op.Row(dst), ShouldNotBeEmpty)
		})

		Convey("Reading blank should leave the configuration in place", func() {
			src, _ := ix.Encode(3, 0, []int{1, 1, 1, 2})
			So(op.At(src, src), ShouldEqual, complex(1, 0))
		})
	})

	Convey("Given a machine that always moves right", t, func() {
		rules := []TransitionRule{
			{CurrentState: 0, Read: 0, Write: 0, Move: MoveRight, NextState: 0, Amplitude: 1},
		}
		op, g := mustBuild(rules, 2)
		ix, _ := NewIndexer(g)

		Convey("A move off the right end should become a self-loop on the source", func() {
			edge, _ := ix.Encode(1, 0, []int{0, 0})
			So(op.At(edge, edge), ShouldEqual, complex(1, 0))
		})

		Convey("A move inside the tape should be an ordinary transition", func() {
			src, _ := ix.Encode(0, 0, []int{0, 0})
			dst, _ := ix.Encode(1, 0, []int{0, 0})
			So(op.At(dst, src), ShouldEqual, complex(1, 0))
			So(op.At(src, src), ShouldEqual, complex(0, 0))
		})
	})

	Convey("Given a machine that always moves left", t, func() {
		rules := []TransitionRule{
			{CurrentState: 0, Read: 0, Write: 0, Move: MoveLeft, NextState: 0, Amplitude: 1},
		}
		op, g := mustBuild(rules, 2)
		ix, _ := NewIndexer(g)

		Convey("A move off the left end should become a self-loop on the source", func() {
			edge, _ := ix.Encode(0, 0, []int{0, 0})
			So(op.At(edge, edge), ShouldEqual, complex(1, 0))

			from, _ := ix.Encode(1, 0, []int{0, 0})
			So(op.At(edge, from), ShouldEqual, complex(1, 0))
		})
	})

	Convey("Given rules that land on the same cell", t, func() {
		half := TransitionRule{CurrentState: 0, Read: 0, Write: 1, Move: MoveStay, NextState: 0, Amplitude: 0.5}

		Convey("Their amplitudes should add", func() {
			op, _ := mustBuild([]TransitionRule{half, half}, 1)
			So(op.At(1, 0), ShouldEqual, complex(1, 0))
			So(op.NNZ(), ShouldEqual, 1)
		})

		Convey("Amplitudes that cancel should leave no entry", func() {
			negated := half
			negated.Amplitude = -0.5

			op, _ := mustBuild([]TransitionRule{half, negated}, 1)
			So(op.At(1, 0), ShouldEqual, complex(0, 0))
			So(op.NNZ(), ShouldEqual, 0)
		})
	})

	Convey("Given the bit-flip machine", t, func() {
		op, _ := mustBuild(flipBits, 3)

		Convey("Every configuration should have exactly one successor", func() {
			So(op.NNZ(), ShouldEqual, op.Dim())

			seen := make(map[int]bool)
			op.Each(func(e Entry) {
				So(e.Value, ShouldEqual, complex(1, 0))
				So(seen[e.Col], ShouldBeFalse)
				seen[e.Col] = true
			})
			So(len(seen), ShouldEqual, op.Dim())
		})
	})

	Convey("Given invalid rules", t, func() {
		g := NewGeometry(2, 2)

		cases := []TransitionRule{
			{CurrentState: -1, Read: 0, Write: 0, NextState: 0, Amplitude: 1},
			{CurrentState: 0, Read: 3, Write: 0, NextState: 0, Amplitude: 1},
			{CurrentState: 0, Read: 0, Write: 3, NextState: 0, Amplitude: 1},
			{CurrentState: 0, Read: 0, Write: 0, Move: 2, NextState: 0, Amplitude: 1},
			{CurrentState: 0, Read: 0, Write: 0, NextState: 2, Amplitude: 1},
		}

		Convey("Build should fail without returning an operator", func() {
			for _, bad := range cases {
				rules := []TransitionRule{flipBits[0], bad}

				op, err := Build(rules, g)
				So(op, ShouldBeNil)
				So(errors.Is(err, ErrInvalidTransitionRule), ShouldBeTrue)

				var ruleErr *RuleError
				So(errors.As(err, &ruleErr), ShouldBeTrue)
				So(ruleErr.Position, ShouldEqual, 1)
				So(ruleErr.Rule, ShouldResemble, bad)
			}
		})
	})

	Convey("Given an empty geometry", t, func() {
		_, err := Build(flipBits, NewGeometry(0, 1))
		So(errors.Is(err, ErrInvalidGeometry), ShouldBeTrue)
	})
}
