package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"sdg7-dashboard/internal/model"
)

// ParamError is a query parameter that could not be parsed
type ParamError struct {
	Param string
	Value string
	Err   error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q: invalid value %q: %v", e.Param, e.Value, e.Err)
}

func (e *ParamError) Unwrap() error { return e.Err }

// query reads typed values from the URL query. The first parse failure is
// kept and later reads return their defaults.
type query struct {
	values url.Values
	err    error
}

func newQuery(r *http.Request) *query {
	return &query{values: r.URL.Query()}
}

func (q *query) Err() error { return q.err }

func (q *query) String(name, def string) string {
	if s := strings.TrimSpace(q.values.Get(name)); s != "" {
		return s
	}
	return def
}

func (q *query) Indicator(name string, def model.Indicator) model.Indicator {
	return model.Indicator(strings.ToLower(q.String(name, string(def))))
}

func (q *query) Int(name string, def int) int {
	s := strings.TrimSpace(q.values.Get(name))
	if s == "" || q.err != nil {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		q.err = &ParamError{Param: name, Value: s, Err: strconv.ErrSyntax}
		return def
	}
	return n
}

// List accepts both repeated parameters and comma-separated values:
// ?country=India&country=Kenya or ?country=India,Kenya
func (q *query) List(name string) []string {
	var out []string
	for _, raw := range q.values[name] {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// newValidator reports field names as their query parameter or JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// bind returns the query's parse error, then the struct's validation errors
func (h *Handler) bind(q *query, params interface{}) error {
	if err := q.Err(); err != nil {
		return err
	}
	return h.validate.Struct(params)
}

// fieldErrors flattens validator errors into response details
func fieldErrors(errs validator.ValidationErrors) ([]map[string]interface{}, string) {
	fields := make([]map[string]interface{}, len(errs))
	msgs := make([]string, len(errs))
	for i, fe := range errs {
		msg := fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fields[i] = map[string]interface{}{
			"param": fe.Field(),
			"tag":   fe.Tag(),
			"value": fe.Value(),
		}
		msgs[i] = msg
	}
	return fields, strings.Join(msgs, "; ")
}

// ------------------- Request parameter structs -------------------

type observationsParams struct {
	Year      int      `query:"year" validate:"omitempty,min=2000,max=2020"`
	Countries []string `query:"country"`
}

type seriesParams struct {
	Indicator model.Indicator `query:"indicator" validate:"required"`
	Countries []string        `query:"country"`
}

type comparisonParams struct {
	Baseline  int             `query:"baseline" validate:"min=2000,max=2020"`
	Sort      model.Indicator `query:"sort" validate:"required"`
	Order     string          `query:"order" validate:"oneof=asc desc"`
	Limit     int             `query:"limit" validate:"min=0"`
	Countries []string        `query:"country"`
}

type growthParams struct {
	Start     int             `query:"start" validate:"min=2000,max=2020"`
	End       int             `query:"end" validate:"min=2000,max=2020,gtfield=Start"`
	Indicator model.Indicator `query:"indicator" validate:"required"`
}

type correlationParams struct {
	Year int             `query:"year" validate:"min=2000,max=2020"`
	X    model.Indicator `query:"x" validate:"required"`
	Y    model.Indicator `query:"y" validate:"required"`
}

type growthCorrelationParams struct {
	Start int             `query:"start" validate:"min=2000,max=2020"`
	End   int             `query:"end" validate:"min=2000,max=2020,gtfield=Start"`
	X     model.Indicator `query:"x" validate:"required"`
	Y     model.Indicator `query:"y" validate:"required"`
}

type matrixParams struct {
	Year int `query:"year" validate:"min=2000,max=2020"`
}

type quartileParams struct {
	Year      int             `query:"year" validate:"min=2000,max=2020"`
	Indicator model.Indicator `query:"indicator" validate:"required"`
	K         int             `query:"k" validate:"min=2,max=20"`
}

type distributionParams struct {
	Year      int             `query:"year" validate:"min=2000,max=2020"`
	Indicator model.Indicator `query:"indicator" validate:"required"`
	By        string          `query:"by" validate:"omitempty,oneof=region"`
	Bins      int             `query:"bins" validate:"min=1,max=500"`
}

type mapParams struct {
	Year      int             `query:"year" validate:"min=2000,eq=2030|max=2020"`
	Indicator model.Indicator `query:"indicator" validate:"required"`
}

type differenceParams struct {
	Year int             `query:"year" validate:"min=2000,max=2020"`
	A    model.Indicator `query:"a" validate:"required"`
	B    model.Indicator `query:"b" validate:"required,nefield=A"`
}

type summaryParams struct {
	Country string `query:"country" validate:"required"`
	From    int    `query:"from" validate:"min=2000,max=2020"`
	To      int    `query:"to" validate:"min=2000,max=2020,gtfield=From"`
}

type listParams struct {
	Limit int `query:"limit" validate:"min=1,max=1000"`
}
