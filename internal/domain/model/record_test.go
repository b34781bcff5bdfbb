package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/birdplot/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func full(dove, eagle, owl, peacock float64) map[model.Axis]float64 {
	return map[model.Axis]float64{
		model.Dove:    dove,
		model.Eagle:   eagle,
		model.Owl:     owl,
		model.Peacock: peacock,
	}
}

func TestNewScoreRecord(t *testing.T) {
	Convey("Given score maps", t, func() {
		Convey("When every axis is supplied", func() {
			r, err := model.NewScoreRecord(" Grace ", "P/D", full(15, 12, 5, 17))

			Convey("Then the record is complete and trimmed", func() {
				So(err, ShouldBeNil)
				So(r.ID(), ShouldEqual, "Grace")
				So(r.Note(), ShouldEqual, "P/D")
				So(r.Complete(), ShouldBeTrue)
				So(r.Missing(), ShouldBeEmpty)

				v, ok := r.Score(model.Peacock)
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 17.0)
			})
		})

		Convey("When Peacock is absent", func() {
			scores := full(4, 10, 12, 0)
			delete(scores, model.Peacock)
			r, err := model.NewScoreRecord("Henry", "", scores)

			Convey("Then the record builds but is incomplete", func() {
				So(err, ShouldBeNil)
				So(r.Complete(), ShouldBeFalse)
				So(r.Missing(), ShouldResemble, []model.Axis{model.Peacock})
				_, ok := r.Score(model.Peacock)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the identifier is blank", func() {
			_, err := model.NewScoreRecord("   ", "", full(1, 1, 1, 1))

			Convey("Then construction fails", func() {
				So(errors.Is(err, model.ErrInvalidRecord), ShouldBeTrue)
			})
		})

		Convey("When a score is negative or not a number", func() {
			_, negErr := model.NewScoreRecord("x", "", full(-1, 1, 1, 1))
			_, nanErr := model.NewScoreRecord("x", "", full(math.NaN(), 1, 1, 1))

			Convey("Then construction fails", func() {
				So(errors.Is(negErr, model.ErrInvalidRecord), ShouldBeTrue)
				So(errors.Is(nanErr, model.ErrInvalidRecord), ShouldBeTrue)
			})
		})
	})
}

func TestTitle(t *testing.T) {
	Convey("Given records with and without notes", t, func() {
		withNote, _ := model.NewScoreRecord("Grace", "P/D", full(1, 1, 1, 1))
		withoutNote, _ := model.NewScoreRecord("Grace", "", full(1, 1, 1, 1))

		Convey("Then the title omits an empty note", func() {
			So(withNote.Title(), ShouldEqual, "Grace P/D")
			So(withoutNote.Title(), ShouldEqual, "Grace")
		})

		Convey("Then a note with spaces is kept as written", func() {
			r, _ := model.NewScoreRecord("Henry", "Team Lead", full(1, 1, 1, 1))
			So(r.Title(), ShouldEqual, "Henry Team Lead")
		})
	})
}

func TestTeamAverage(t *testing.T) {
	Convey("Given a mix of complete and incomplete records", t, func() {
		a, _ := model.NewScoreRecord("A", "", full(10, 0, 4, 2))
		b, _ := model.NewScoreRecord("B", "", full(0, 10, 8, 6))
		partial := full(100, 100, 100, 100)
		delete(partial, model.Owl)
		c, _ := model.NewScoreRecord("C", "", partial)

		Convey("When averaging", func() {
			avg, ok := model.TeamAverage([]model.ScoreRecord{a, b, c})

			Convey("Then only complete records count", func() {
				So(ok, ShouldBeTrue)
				So(avg.ID(), ShouldEqual, model.TeamAverageID)
				So(avg.Note(), ShouldEqual, model.TeamAverageNote)
				So(avg.Complete(), ShouldBeTrue)

				dove, _ := avg.Score(model.Dove)
				owl, _ := avg.Score(model.Owl)
				So(dove, ShouldEqual, 5.0)
				So(owl, ShouldEqual, 6.0)
			})
		})

		Convey("When nothing is complete", func() {
			_, ok := model.TeamAverage([]model.ScoreRecord{c})

			Convey("Then there is no average", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestSafeName(t *testing.T) {
	Convey("Given identifiers destined for file names", t, func() {
		So(model.SafeName("Alice/Bob.."), ShouldEqual, "Alice_Bob")
		So(model.SafeName("   "), ShouldEqual, "unnamed")
		So(model.SafeName("Ok-Name_1"), ShouldEqual, "Ok-Name_1")
		So(model.SafeName("José María"), ShouldEqual, "Jos_Mar_a")
	})
}

func TestParseAxis(t *testing.T) {
	Convey("Given column headers", t, func() {
		a, ok := model.ParseAxis(" peacock ")
		So(ok, ShouldBeTrue)
		So(a, ShouldEqual, model.Peacock)
		So(a.String(), ShouldEqual, "Peacock")

		_, ok = model.ParseAxis("Name")
		So(ok, ShouldBeFalse)
	})
}
