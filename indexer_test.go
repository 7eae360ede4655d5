package qtm

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIndexer(t *testing.T) {
	Convey("Given an indexer for three cells and two states", t, func() {
		ix, err := NewIndexer(NewGeometry(3, 2))
		So(err, ShouldBeNil)
		So(ix.Size(), ShouldEqual, 3*2*27)

		Convey("It should place the head as the most significant digit", func() {
			index, err := ix.Encode(1, 1, []int{2, 0, 1})
			So(err, ShouldBeNil)
			So(index, ShouldEqual, 54+27+2+9)

			head, state, tape, err := ix.Decode(index)
			So(err, ShouldBeNil)
			So(head, ShouldEqual, 1)
			So(state, ShouldEqual, 1)
			So(tape, ShouldResemble, []int{2, 0, 1})
		})

		Convey("Decoding then encoding should round-trip every index", func() {
			for index := 0; index < ix.Size(); index++ {
				head, state, tape, err := ix.Decode(index)
				So(err, ShouldBeNil)
				So(ix.HeadOf(index), ShouldEqual, head)
				So(ix.StateOf(index), ShouldEqual, state)

				back, err := ix.Encode(head, state, tape)
				So(err, ShouldBeNil)
				So(back, ShouldEqual, index)
			}
		})

		Convey("Indices outside the space should be rejected", func() {
			_, _, _, err := ix.Decode(-1)
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)

			_, _, _, err = ix.Decode(ix.Size())
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)
		})

		Convey("Triples outside the domain should be rejected", func() {
			_, err := ix.Encode(3, 0, []int{0, 0, 0})
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)

			_, err = ix.Encode(0, 2, []int{0, 0, 0})
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)

			_, err = ix.Encode(0, 0, []int{0, 3, 0})
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)

			_, err = ix.Encode(0, 0, []int{0, 0})
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)
		})
	})

	Convey("Given a geometry too large to address", t, func() {
		_, err := NewIndexer(NewGeometry(64, 2))
		So(errors.Is(err, ErrInvalidGeometry), ShouldBeTrue)
	})
}

func TestGeometry(t *testing.T) {
	Convey("Given rules that mention states 0 to 3", t, func() {
		rules := []TransitionRule{
			{CurrentState: 0, Read: 0, Write: 0, NextState: 3, Amplitude: 1},
			{CurrentState: 2, Read: 1, Write: 1, NextState: 1, Amplitude: 1},
		}

		Convey("The derived geometry should count four states and halt in the last", func() {
			g := DeriveGeometry(rules, 2)
			So(g.NumStates, ShouldEqual, 4)
			So(g.HaltState, ShouldEqual, 3)
			So(g.Base, ShouldEqual, DefaultBase)
			So(g.HaltingEnabled(), ShouldBeTrue)
			So(g.Validate(), ShouldBeNil)

			dim, err := g.Dimension()
			So(err, ShouldBeNil)
			So(dim, ShouldEqual, 2*4*9)
		})
	})

	Convey("Given a single-state geometry", t, func() {
		g := NewGeometry(4, 1)

		Convey("Halting should be disabled", func() {
			So(g.HaltingEnabled(), ShouldBeFalse)
		})
	})

	Convey("Given a start state outside the machine", t, func() {
		g := NewGeometry(2, 2)
		g.StartState = 2
		So(errors.Is(g.Validate(), ErrInvalidGeometry), ShouldBeTrue)
	})
}
