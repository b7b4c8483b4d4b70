package pipeline

import (
	"errors"
	"fmt"
	"time"

	"sdg7-dashboard/internal/metrics"
	"sdg7-dashboard/internal/model"
)

// Defaults applied to zero-valued request fields
const (
	DefaultYear      = model.MaxYear
	DefaultStartYear = model.MinYear
	DefaultBuckets   = 4
	DefaultBins      = 50
)

// ErrInvalidYearRange rejects a growth or summary request whose end year is not after its start year
var ErrInvalidYearRange = errors.New("end year must be after start year")

// default indicator of each view when the request names none
var defaultIndicator = map[string]model.Indicator{
	model.ViewComparison:   model.AccessToElectricity,
	model.ViewGrowth:       model.RenewableCapacityPerCapita,
	model.ViewQuartiles:    model.CO2EmissionsKt,
	model.ViewDistribution: model.CO2EmissionsKt,
	model.ViewMap:          model.AccessToElectricity,
}

// ApplyDefaults fills zero-valued fields of a request
func ApplyDefaults(req model.ViewRequest) model.ViewRequest {
	if req.Year == 0 {
		req.Year = DefaultYear
	}
	if req.Baseline == 0 {
		req.Baseline = DefaultYear
	}
	if req.Start == 0 {
		req.Start = DefaultStartYear
	}
	if req.End == 0 {
		req.End = DefaultYear
	}
	if req.K == 0 {
		req.K = DefaultBuckets
	}
	if req.Bins == 0 {
		req.Bins = DefaultBins
	}
	if req.Indicator == "" {
		req.Indicator = defaultIndicator[req.View]
	}
	if req.SortBy == "" && req.View == model.ViewComparison {
		req.SortBy = req.Indicator
	}
	return req
}

// CheckRequest reports ErrUnknownIndicator or ErrUnknownCountry for a request
// that names a column or country the dataset does not have, and
// ErrInvalidYearRange for an empty growth or summary span. Defaults are
// applied first.
func CheckRequest(ds *model.Dataset, req model.ViewRequest) error {
	req = ApplyDefaults(req)
	if (req.View == model.ViewGrowth || req.View == model.ViewSummary) && req.End <= req.Start {
		return fmt.Errorf("%w: start %d, end %d", ErrInvalidYearRange, req.Start, req.End)
	}
	switch req.View {
	case model.ViewComparison:
		return CheckIndicator(ds, req.SortBy, true)
	case model.ViewGrowth, model.ViewQuartiles, model.ViewDistribution:
		return CheckIndicator(ds, req.Indicator, false)
	case model.ViewMap:
		return CheckIndicator(ds, req.Indicator, req.Year == model.PredictionYear)
	case model.ViewSummary:
		for _, r := range ds.Observations {
			if r.Country == req.Country {
				return nil
			}
		}
		return fmt.Errorf("%w: %q", ErrUnknownCountry, req.Country)
	case model.ViewObservations, model.ViewCorrelationMatrix:
		return nil
	}
	return fmt.Errorf("unknown view: %q", req.View)
}

// BuildView computes the table form of a derived view. It backs the export path,
// where every view is written as rows and columns.
func BuildView(ds *model.Dataset, lookup RegionLookup, req model.ViewRequest) (table model.Table, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.RecordView(req.View, result, time.Since(start))
	}()

	if err := CheckRequest(ds, req); err != nil {
		return model.Table{}, err
	}
	rawYear := req.Year
	req = ApplyDefaults(req)
	observations := AssignRegion(ds.Observations, lookup)

	switch req.View {
	case model.ViewObservations:
		rows := FilterCountries(observations, req.Countries)
		if rawYear != 0 {
			rows = FilterByYear(rows, rawYear)
		}
		return model.ObservationsTable(rows, ds.Indicators), nil

	case model.ViewComparison:
		tracked := ds.Predicted
		if len(tracked) == 0 {
			tracked = model.PredictedIndicators
		}
		rows := BuildComparison(observations, ds.Predictions, req.Baseline, tracked)
		rows = ComparisonForCountries(rows, req.Countries)
		rows = TopN(SortComparison(rows, req.SortBy, req.Descending), req.Limit)
		return rows.ToTable(tracked, req.Baseline), nil

	case model.ViewGrowth:
		return ComputeGrowthPivot(observations, req.Start, req.End, req.Indicator).ToTable(req.Indicator, req.Start, req.End), nil

	case model.ViewQuartiles:
		v, err := BuildQuartileView(observations, req.Indicator, req.Year, req.K)
		if err != nil {
			return model.Table{}, err
		}
		return v.ToTable(), nil

	case model.ViewDistribution:
		d, err := BuildDistribution(observations, req.Indicator, req.Year, req.Bins, req.ByRegion)
		if err != nil {
			return model.Table{}, err
		}
		return d.ToTable(), nil

	case model.ViewMap:
		return MapValues(observations, ds.Predictions, lookup, req.Indicator, req.Year).ToTable(), nil

	case model.ViewSummary:
		s, err := CountrySummary(observations, lookup, req.Country, req.Start, req.End, model.CoreIndicators)
		if err != nil {
			return model.Table{}, err
		}
		return s.ToTable(), nil

	case model.ViewCorrelationMatrix:
		return CorrelationMatrix(observations, req.Year, ds.Indicators).ToTable(), nil
	}
	return model.Table{}, fmt.Errorf("unknown view: %q", req.View)
}
