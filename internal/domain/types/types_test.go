package types_test

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/prediction"
	"github.com/sves-daq/backend/internal/domain/types"
)

func TestDomainViewJSON(t *testing.T) {
	Convey("Given a domain view", t, func() {
		Convey("The error field is left out when empty", func() {
			b, err := json.Marshal(types.DomainView{
				Domain: "brakes",
				KPIs:   []model.Document{},
				Tests:  []model.Document{},
				Events: []model.Document{},
			})
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"domain":"brakes","kpis":[],"tests":[],"events":[]}`)
		})

		Convey("The error field is emitted when set", func() {
			b, err := json.Marshal(types.DomainView{Domain: "ride", Error: "store unavailable"})
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"error":"store unavailable"`)
		})
	})
}

func TestCreatedJSON(t *testing.T) {
	Convey("Status is only emitted for compliance records", t, func() {
		b, _ := json.Marshal(types.Created{ID: "a", Message: "Test data created successfully"})
		So(string(b), ShouldEqual, `{"id":"a","message":"Test data created successfully"}`)

		b, _ = json.Marshal(types.Created{ID: "b", Status: "compliant", Message: "Compliance record created successfully"})
		So(string(b), ShouldEqual, `{"id":"b","status":"compliant","message":"Compliance record created successfully"}`)
	})
}

func TestResponseConstructors(t *testing.T) {
	Convey("Given engine outputs", t, func() {
		Convey("The predict response lifts confidence and timestamp", func() {
			res := prediction.Result{Value: 71.2, Confidence: 0.87, Model: "remainingLife", Timestamp: "2026-03-01T10:00:00.000Z"}
			out := types.NewPredictResponse(res)
			So(out.Prediction, ShouldResemble, res)
			So(out.Confidence, ShouldEqual, 0.87)
			So(out.Timestamp, ShouldEqual, res.Timestamp)
		})

		Convey("The risk response renames the overall level", func() {
			a := prediction.AnalyzeRiskFactors(prediction.Features{"complianceRate": 70}, "")
			out := types.NewRiskResponse(a)
			So(out.RiskLevel, ShouldEqual, prediction.RiskHigh)
			So(len(out.Factors), ShouldEqual, 1)
		})

		Convey("Recommendations carry fixed labels and never encode null", func() {
			b, err := json.Marshal(types.NewRecommendationsResponse(nil))
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, `{"recommendations":[],"priority":"high","estimatedImpact":"medium"}`)
		})
	})
}
