package prediction

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateRecommendations(t *testing.T) {
	Convey("Given performance gaps", t, func() {
		recs := GenerateRecommendations([]PerformanceGap{
			{Area: "braking", Current: 80, Target: 90},
			{Area: "ride", Current: 3, Target: 2},
			{Area: "nvh", Current: 0, Target: 10},
		})

		Convey("Each gap maps to one recommendation in order", func() {
			So(len(recs), ShouldEqual, 3)
			So(recs[0], ShouldResemble, Recommendation{
				Area:                 "braking",
				CurrentValue:         80,
				TargetValue:          90,
				Suggestion:           "Optimize braking parameters to improve performance",
				EstimatedImprovement: "12.5%",
			})
		})

		Convey("Regressions are negative", func() {
			So(recs[1].EstimatedImprovement, ShouldEqual, "-33.3%")
		})

		Convey("A zero current value has no relative improvement", func() {
			So(recs[2].EstimatedImprovement, ShouldEqual, NotApplicable)
		})

		Convey("No gaps yield an empty, non-nil slice", func() {
			So(GenerateRecommendations(nil), ShouldNotBeNil)
			So(GenerateRecommendations(nil), ShouldBeEmpty)
		})
	})
}

func TestEstimatedImprovement(t *testing.T) {
	Convey("One decimal place is kept", t, func() {
		So(EstimatedImprovement(3, 4), ShouldEqual, "33.3%")
		So(EstimatedImprovement(50, 50), ShouldEqual, "0.0%")
		So(EstimatedImprovement(8, 9), ShouldEqual, "12.5%")
	})
}
