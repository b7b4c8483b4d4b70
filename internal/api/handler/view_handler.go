package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"sdg7-dashboard/internal/model"
	"sdg7-dashboard/internal/pipeline"
)

// default correlation pairs of the hypothesis pages
const (
	defaultCorrelationX       = model.GDPPerCapita
	defaultCorrelationY       = model.AccessToCleanFuels
	defaultGrowthCorrelationX = model.RenewableCapacityPerCapita
	defaultGrowthCorrelationY = model.CO2EmissionsKt
	defaultDifferenceA        = model.RenewableEnergyShare
	defaultDifferenceB        = model.FossilElectricity
)

// Observations returns historical rows
// @Summary Historical observations
// @Description Rows of the historical table with regions assigned, optionally filtered by year and countries
// @Tags views
// @Produce json
// @Param year query int false "Year (2000-2020); all years when omitted"
// @Param country query []string false "Countries, repeated or comma-separated" collectionFormat(multi)
// @Success 200 {object} APIResponse{data=[]model.ObservationRecord}
// @Failure 400 {object} APIResponse
// @Router /api/v1/observations [get]
func (h *Handler) Observations(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, model.ViewObservations, h.observationsView)
}

func (h *Handler) observationsView(q *query) (interface{}, int, error) {
	p := observationsParams{Year: q.Int("year", 0), Countries: q.List("country")}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	rows := pipeline.FilterCountries(h.observations, p.Countries)
	if p.Year != 0 {
		rows = pipeline.FilterByYear(rows, p.Year)
	}
	return rows, len(rows), nil
}

// Series returns per-country time series
// @Summary Indicator over time
// @Description One point per country and year with a non-null value, ordered by country then year
// @Tags views
// @Produce json
// @Param indicator query string false "Indicator" default(access_to_electricity)
// @Param country query []string false "Countries, repeated or comma-separated" collectionFormat(multi)
// @Success 200 {object} APIResponse{data=[]model.SeriesPoint}
// @Failure 400 {object} APIResponse
// @Router /api/v1/series [get]
func (h *Handler) Series(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, "series", h.seriesView)
}

func (h *Handler) seriesView(q *query) (interface{}, int, error) {
	p := seriesParams{Indicator: q.Indicator("indicator", model.AccessToElectricity), Countries: q.List("country")}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	if err := pipeline.CheckIndicator(h.ds, p.Indicator, false); err != nil {
		return nil, 0, err
	}
	points := pipeline.CountrySeries(h.observations, p.Indicator, p.Countries)
	return points, len(points), nil
}

// Comparison joins baseline observations with the 2030 predictions
// @Summary Baseline vs 2030 comparison
// @Description Inner join on country of the baseline year and the predictions with predicted minus baseline deltas. Countries missing from either side are dropped.
// @Tags views
// @Produce json
// @Param baseline query int false "Baseline year" default(2020)
// @Param sort query string false "Indicator whose delta ranks the rows" default(access_to_electricity)
// @Param order query string false "asc or desc" default(desc)
// @Param limit query int false "Keep the first N rows after sorting"
// @Param country query []string false "Countries, repeated or comma-separated" collectionFormat(multi)
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/v1/comparison [get]
func (h *Handler) Comparison(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, model.ViewComparison, h.comparisonView)
}

func (h *Handler) comparisonView(q *query) (interface{}, int, error) {
	p := comparisonParams{
		Baseline:  q.Int("baseline", pipeline.DefaultYear),
		Sort:      q.Indicator("sort", model.AccessToElectricity),
		Order:     q.String("order", "desc"),
		Limit:     q.Int("limit", 0),
		Countries: q.List("country"),
	}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	if err := pipeline.CheckIndicator(h.ds, p.Sort, true); err != nil {
		return nil, 0, err
	}
	rows := pipeline.BuildComparison(h.observations, h.ds.Predictions, p.Baseline, h.ds.Predicted)
	rows = pipeline.ComparisonForCountries(rows, p.Countries)
	rows = pipeline.TopN(pipeline.SortComparison(rows, p.Sort, p.Order == "desc"), p.Limit)
	return rows, len(rows), nil
}

// Growth returns the growth pivot of one indicator
// @Summary Growth pivot
// @Description end minus start value per country; countries lacking either year are excluded
// @Tags views
// @Produce json
// @Param start query int false "Start year" default(2000)
// @Param end query int false "End year" default(2020)
// @Param indicator query string false "Indicator" default(renewable_capacity_per_capita)
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Router /api/v1/growth [get]
func (h *Handler) Growth(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, model.ViewGrowth, h.growthView)
}

func (h *Handler) growthView(q *query) (interface{}, int, error) {
	p := growthParams{
		Start:     q.Int("start", pipeline.DefaultStartYear),
		End:       q.Int("end", pipeline.DefaultYear),
		Indicator: q.Indicator("indicator", model.RenewableCapacityPerCapita),
	}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	if err := pipeline.CheckIndicator(h.ds, p.Indicator, false); err != nil {
		return nil, 0, err
	}
	rows := pipeline.ComputeGrowthPivot(h.observations, p.Start, p.End, p.Indicator)
	return rows, len(rows), nil
}

// Correlation correlates two indicators within one year
// @Summary Indicator correlation
// @Description Pearson r, two-sided p-value and OLS trendline over countries with both values. Zero variance yields applicable=false and a null coefficient.
// @Tags views
// @Produce json
// @Param year query int false "Year" default(2020)
// @Param x query string false "X indicator" default(gdp_per_capita)
// @Param y query string false "Y indicator" default(access_to_clean_fuels)
// @Success 200 {object} APIResponse{data=model.CorrelationView}
// @Failure 400 {object} APIResponse
// @Router /api/v1/correlation [get]
func (h *Handler) Correlation(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, "correlation", h.correlationView)
}

func (h *Handler) correlationView(q *query) (interface{}, int, error) {
	p := correlationParams{
		Year: q.Int("year", pipeline.DefaultYear),
		X:    q.Indicator("x", defaultCorrelationX),
		Y:    q.Indicator("y", defaultCorrelationY),
	}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	for _, ind := range []model.Indicator{p.X, p.Y} {
		if err := pipeline.CheckIndicator(h.ds, ind, false); err != nil {
			return nil, 0, err
		}
	}
	points := pipeline.PairedValues(pipeline.FilterByYear(h.observations, p.Year), p.X, p.Y)
	return scatterCorrelation(points, p.X, p.Y, fmt.Sprint(p.Year)), -1, nil
}

// GrowthCorrelation correlates the growth of two indicators
// @Summary Growth correlation
// @Description Joins two growth pivots on country and correlates the growth values
// @Tags views
// @Produce json
// @Param start query int false "Start year" default(2000)
// @Param end query int false "End year" default(2020)
// @Param x query string false "X indicator" default(renewable_capacity_per_capita)
// @Param y query string false "Y indicator" default(co2_emissions_kt)
// @Success 200 {object} APIResponse{data=model.CorrelationView}
// @Failure 400 {object} APIResponse
// @Router /api/v1/growth-correlation [get]
func (h *Handler) GrowthCorrelation(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, "growth-correlation", h.growthCorrelationView)
}

func (h *Handler) growthCorrelationView(q *query) (interface{}, int, error) {
	p := growthCorrelationParams{
		Start: q.Int("start", pipeline.DefaultStartYear),
		End:   q.Int("end", pipeline.DefaultYear),
		X:     q.Indicator("x", defaultGrowthCorrelationX),
		Y:     q.Indicator("y", defaultGrowthCorrelationY),
	}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	for _, ind := range []model.Indicator{p.X, p.Y} {
		if err := pipeline.CheckIndicator(h.ds, ind, false); err != nil {
			return nil, 0, err
		}
	}
	x := pipeline.ComputeGrowthPivot(h.observations, p.Start, p.End, p.X)
	y := pipeline.ComputeGrowthPivot(h.observations, p.Start, p.End, p.Y)
	points := pipeline.GrowthScatter(pipeline.JoinGrowth(x, y), h.lookup)
	return scatterCorrelation(points, p.X, p.Y, fmt.Sprintf("%d-%d growth", p.Start, p.End)), -1, nil
}

func scatterCorrelation(points []model.ScatterPoint, x, y model.Indicator, label string) model.CorrelationView {
	v := pipeline.BuildCorrelationView(points, string(x), string(y), label)
	if v.Points == nil {
		v.Points = []model.ScatterPoint{}
	}
	return v
}

// CorrelationMatrix returns pairwise coefficients of all indicators
// @Summary Correlation matrix
// @Description Pairwise Pearson r over every indicator of one year; degenerate pairs are null
// @Tags views
// @Produce json
// @Param year query int false "Year" default(2020)
// @Success 200 {object} APIResponse{data=model.CorrelationMatrix}
// @Failure 400 {object} APIResponse
// @Router /api/v1/correlation-matrix [get]
func (h *Handler) CorrelationMatrix(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, model.ViewCorrelationMatrix, h.correlationMatrixView)
}

func (h *Handler) correlationMatrixView(q *query) (interface{}, int, error) {
	p := matrixParams{Year: q.Int("year", pipeline.DefaultYear)}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	return pipeline.CorrelationMatrix(h.observations, p.Year, h.ds.Indicators), -1, nil
}

// Quartiles buckets countries into equal-frequency groups
// @Summary Quantile buckets
// @Description Assigns each country to one of k equal-frequency buckets labelled Q1..Qk
// @Tags views
// @Produce json
// @Param year query int false "Year" default(2020)
// @Param indicator query string false "Indicator" default(co2_emissions_kt)
// @Param k query int false "Bucket count" default(4)
// @Success 200 {object} APIResponse{data=model.QuartileView}
// @Failure 400 {object} APIResponse
// @Router /api/v1/quartiles [get]
func (h *Handler) Quartiles(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, model.ViewQuartiles, h.quartilesView)
}

func (h *Handler) quartilesView(q *query) (interface{}, int, error) {
	p := quartileParams{
		Year:      q.Int("year", pipeline.DefaultYear),
		Indicator: q.Indicator("indicator", model.CO2EmissionsKt),
		K:         q.Int("k", pipeline.DefaultBuckets),
	}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	if err := pipeline.CheckIndicator(h.ds, p.Indicator, false); err != nil {
		return nil, 0, err
	}
	v, err := pipeline.BuildQuartileView(h.observations, p.Indicator, p.Year, p.K)
	if err != nil {
		return nil, 0, err
	}
	return v, -1, nil
}

// Distribution returns box statistics and a histogram
// @Summary Distribution
// @Description Five-number summary overall and optionally per region, plus an equal-width histogram
// @Tags views
// @Produce json
// @Param year query int false "Year" default(2020)
// @Param indicator query string false "Indicator" default(co2_emissions_kt)
// @Param by query string false "Set to region for per-region groups"
// @Param bins query int false "Histogram bins" default(50)
// @Success 200 {object} APIResponse{data=model.Distribution}
// @Failure 400 {object} APIResponse
// @Failure 422 {object} APIResponse
// @Router /api/v1/distribution [get]
func (h *Handler) Distribution(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, model.ViewDistribution, h.distributionView)
}

func (h *Handler) distributionView(q *query) (interface{}, int, error) {
	p := distributionParams{
		Year:      q.Int("year", pipeline.DefaultYear),
		Indicator: q.Indicator("indicator", model.CO2EmissionsKt),
		By:        q.String("by", ""),
		Bins:      q.Int("bins", pipeline.DefaultBins),
	}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	if err := pipeline.CheckIndicator(h.ds, p.Indicator, false); err != nil {
		return nil, 0, err
	}
	d, err := pipeline.BuildDistribution(h.observations, p.Indicator, p.Year, p.Bins, p.By == "region")
	if err != nil {
		return nil, 0, err
	}
	return d, -1, nil
}

// Map returns choropleth values
// @Summary Choropleth values
// @Description One value per country for a year; year 2030 reads the prediction table
// @Tags views
// @Produce json
// @Param year query int false "Year (2000-2020 or 2030)" default(2020)
// @Param indicator query string false "Indicator" default(access_to_electricity)
// @Success 200 {object} APIResponse{data=model.MapView}
// @Failure 400 {object} APIResponse
// @Router /api/v1/map [get]
func (h *Handler) Map(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, model.ViewMap, h.mapView)
}

func (h *Handler) mapView(q *query) (interface{}, int, error) {
	p := mapParams{
		Year:      q.Int("year", pipeline.DefaultYear),
		Indicator: q.Indicator("indicator", model.AccessToElectricity),
	}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	if err := pipeline.CheckIndicator(h.ds, p.Indicator, p.Year == model.PredictionYear); err != nil {
		return nil, 0, err
	}
	return pipeline.MapValues(h.observations, h.ds.Predictions, h.lookup, p.Indicator, p.Year), -1, nil
}

// Difference returns indicator a minus indicator b per country
// @Summary Indicator difference
// @Description a - b per country for one year, e.g. renewable share minus fossil electricity
// @Tags views
// @Produce json
// @Param year query int false "Year" default(2020)
// @Param a query string false "Minuend" default(renewable_energy_share)
// @Param b query string false "Subtrahend" default(fossil_electricity)
// @Success 200 {object} APIResponse{data=[]model.MapPoint}
// @Failure 400 {object} APIResponse
// @Router /api/v1/difference [get]
func (h *Handler) Difference(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, "difference", h.differenceView)
}

func (h *Handler) differenceView(q *query) (interface{}, int, error) {
	p := differenceParams{
		Year: q.Int("year", pipeline.DefaultYear),
		A:    q.Indicator("a", defaultDifferenceA),
		B:    q.Indicator("b", defaultDifferenceB),
	}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	for _, ind := range []model.Indicator{p.A, p.B} {
		if err := pipeline.CheckIndicator(h.ds, ind, false); err != nil {
			return nil, 0, err
		}
	}
	points := pipeline.Difference(pipeline.FilterByYear(h.observations, p.Year), p.A, p.B)
	return points, len(points), nil
}

// CountrySummary compares a country's core indicators between two years
// @Summary Country overview
// @Description Value at from and to years and percent change per core indicator; percent change is null when the start value is null or zero
// @Tags views
// @Produce json
// @Param country path string true "Country"
// @Param from query int false "From year" default(2000)
// @Param to query int false "To year" default(2020)
// @Success 200 {object} APIResponse{data=model.CountrySummary}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /api/v1/countries/{country}/summary [get]
func (h *Handler) CountrySummary(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	if unescaped, err := url.PathUnescape(country); err == nil {
		country = unescaped
	}
	h.serveView(w, r, model.ViewSummary, func(q *query) (interface{}, int, error) {
		return h.summaryView(country, q)
	})
}

func (h *Handler) summaryView(country string, q *query) (interface{}, int, error) {
	p := summaryParams{
		Country: country,
		From:    q.Int("from", pipeline.DefaultStartYear),
		To:      q.Int("to", pipeline.DefaultYear),
	}
	if err := h.bind(q, &p); err != nil {
		return nil, 0, err
	}
	s, err := pipeline.CountrySummary(h.observations, h.lookup, p.Country, p.From, p.To, model.CoreIndicators)
	if err != nil {
		return nil, 0, err
	}
	return s, -1, nil
}
