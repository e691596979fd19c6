package prediction

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAnalyzeRiskFactors(t *testing.T) {
	Convey("Given test results", t, func() {
		Convey("Both rules firing keep the risk high", func() {
			r := AnalyzeRiskFactors(Features{"complianceRate": 85, "performanceVariability": 20}, "brakes")
			So(r.OverallRisk, ShouldEqual, RiskHigh)
			So(len(r.Factors), ShouldEqual, 2)
			So(r.Factors[0].Type, ShouldEqual, "compliance")
			So(r.Factors[1].Type, ShouldEqual, "variability")
			So(r.Recommendations, ShouldResemble, []RiskAction{
				{Action: "Address compliance issues", Priority: "high"},
				{Action: "Address variability issues", Priority: "medium"},
			})
		})

		Convey("Variability alone raises to medium", func() {
			r := AnalyzeRiskFactors(Features{"complianceRate": 95, "performanceVariability": 15.5}, "")
			So(r.OverallRisk, ShouldEqual, RiskMedium)
			So(r.Factors[0].Message, ShouldEqual, "High performance variability detected")
		})

		Convey("Healthy results have no factors", func() {
			r := AnalyzeRiskFactors(Features{"complianceRate": 95, "performanceVariability": 5}, "")
			So(r.OverallRisk, ShouldEqual, RiskLow)
			So(r.Factors, ShouldBeEmpty)

			body, err := json.Marshal(r)
			So(err, ShouldBeNil)
			So(string(body), ShouldEqual, `{"overallRisk":"low","factors":[],"recommendations":[]}`)
		})

		Convey("Missing fields never fire a rule", func() {
			So(AnalyzeRiskFactors(Features{}, "").OverallRisk, ShouldEqual, RiskLow)
		})

		Convey("Boundary values do not fire", func() {
			r := AnalyzeRiskFactors(Features{"complianceRate": 90, "performanceVariability": 15}, "")
			So(r.OverallRisk, ShouldEqual, RiskLow)
		})

		Convey("A zero compliance rate is still a reading", func() {
			r := AnalyzeRiskFactors(FeaturesFromJSON(map[string]any{"complianceRate": 0.0}), "")
			So(r.OverallRisk, ShouldEqual, RiskHigh)
		})
	})
}

func TestFeaturesFromJSON(t *testing.T) {
	Convey("Given a decoded JSON object", t, func() {
		f := FeaturesFromJSON(map[string]any{
			"peakStrain": 500.0,
			"cycleCount": "10000",
			"label":      "front-left",
			"flag":       true,
			"nested":     map[string]any{"x": 1.0},
			"blank":      " ",
		})

		Convey("Numbers and numeric strings are kept", func() {
			So(f, ShouldResemble, Features{"peakStrain": 500, "cycleCount": 10000})
		})
	})
}
