package domain

import (
	"fmt"
	"strings"
)

// Field describes one canonical column and the header spellings accepted for it.
type Field struct {
	Key      string
	Synonyms []string
	Required bool
}

// Schema is an ordered canonical-key to synonym table, built once per source kind.
type Schema struct {
	Source string
	Fields []Field
}

// SchemaError reports a required canonical field that no source header resolves to.
type SchemaError struct {
	Source string
	Field  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s source: required column %q not found", e.Source, e.Field)
}

// Resolution maps canonical keys to column indexes; -1 means absent.
type Resolution map[string]int

// Value returns the trimmed cell for key, or "" when the column is absent or the
// row is short.
func (r Resolution) Value(row []string, key string) string {
	idx, ok := r[key]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Has reports whether key resolved to a column.
func (r Resolution) Has(key string) bool {
	idx, ok := r[key]
	return ok && idx >= 0
}

// Resolve matches each field against headers. Synonyms are tried in order and
// the first header equal to a synonym (trimmed, case-insensitive) wins. The
// first unresolved required field aborts the resolution.
func (s Schema) Resolve(headers []string) (Resolution, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	res := make(Resolution, len(s.Fields))
	for _, f := range s.Fields {
		res[f.Key] = findColumn(normalized, f.Synonyms)
		if res[f.Key] < 0 && f.Required {
			return nil, &SchemaError{Source: s.Source, Field: f.Key}
		}
	}
	return res, nil
}

func findColumn(headers, synonyms []string) int {
	for _, syn := range synonyms {
		want := normalizeHeader(syn)
		for i, h := range headers {
			if h == want {
				return i
			}
		}
	}
	return -1
}

// normalizeHeader also drops a UTF-8 byte-order mark, which spreadsheet exports
// leave glued to the first header.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// Canonical field keys.
const (
	FieldDate         = "date"
	FieldStartTime    = "start_time"
	FieldEndTime      = "end_time"
	FieldLocation     = "location"
	FieldDistrict     = "district"
	FieldReportedHead = "reported_head"
	FieldMemo         = "memo"
	FieldLink         = "link"
	FieldTitle        = "title"

	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
	FieldStopID    = "stop_id"
	FieldStopName  = "stop_name"
	FieldLon       = "lon"
	FieldLat       = "lat"

	FieldRoute = "route"
)

// EventSchema resolves assembly-event sheets.
var EventSchema = Schema{
	Source: "event",
	Fields: []Field{
		{Key: FieldDate, Synonyms: []string{"date", "날짜"}, Required: true},
		{Key: FieldStartTime, Synonyms: []string{"start_time", "start", "시작", "starttime"}, Required: true},
		{Key: FieldEndTime, Synonyms: []string{"end_time", "end", "종료", "endtime"}, Required: true},
		{Key: FieldLocation, Synonyms: []string{"location", "장소", "place"}, Required: true},
		{Key: FieldDistrict, Synonyms: []string{"district", "관할서", "구"}},
		{Key: FieldReportedHead, Synonyms: []string{"reported_head", "reported_headcount", "신고인원", "인원"}},
		{Key: FieldMemo, Synonyms: []string{"memo", "비고", "메모"}},
		{Key: FieldLink, Synonyms: []string{"link", "news_link", "기사링크"}},
		{Key: FieldTitle, Synonyms: []string{"title", "news_title", "기사제목"}},
	},
}

// DiversionSchema resolves bus-diversion sheets. Every field is required.
var DiversionSchema = Schema{
	Source: "diversion",
	Fields: []Field{
		{Key: FieldStartDate, Synonyms: []string{"start_date", "시작일"}, Required: true},
		{Key: FieldStartTime, Synonyms: []string{"start_time", "시작시간"}, Required: true},
		{Key: FieldEndDate, Synonyms: []string{"end_date", "종료일"}, Required: true},
		{Key: FieldEndTime, Synonyms: []string{"end_time", "종료시간"}, Required: true},
		{Key: FieldStopID, Synonyms: []string{"ars_id", "ars", "정류장id"}, Required: true},
		{Key: FieldStopName, Synonyms: []string{"정류소명", "정류장명", "stop_name"}, Required: true},
		{Key: FieldLon, Synonyms: []string{"x좌표", "x", "lon", "lng"}, Required: true},
		{Key: FieldLat, Synonyms: []string{"y좌표", "y", "lat"}, Required: true},
	},
}

// RouteSchema resolves the per-day stop/route mapping CSV.
var RouteSchema = Schema{
	Source: "route",
	Fields: []Field{
		{Key: FieldDate, Synonyms: []string{"date"}, Required: true},
		{Key: FieldStopID, Synonyms: []string{"ars_id"}, Required: true},
		{Key: FieldRoute, Synonyms: []string{"route"}},
	},
}
