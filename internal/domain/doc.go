// Package domain models public-assembly events and the bus diversions they cause.
//
// # Data Sources
//
// Three tables are maintained by different teams and arrive with different
// headers and encodings:
//
//   - Event sheet (CSV or XLSX): one row per reported assembly. Headers may be
//     English or Korean ("date"/"날짜", "location"/"장소"/"place", ...).
//   - Diversion sheet (XLSX): one row per bus stop affected by a diversion,
//     with an inclusive start/end date range and stop coordinates.
//   - Route mapping (CSV): date, ars_id, route. Produced by the route-lookup
//     batch; several rows may share a (date, ars_id) pair.
//
// Headers are matched through explicit synonym tables ([EventSchema],
// [DiversionSchema], [RouteSchema]). A missing required column fails the load
// with a [*SchemaError]; missing optional columns read as empty.
//
// # Date and Time Conventions
//
// Date cells:
//
//	"2025-08-15", "2025.8.15" (dots become hyphens), "2025년 8월 15일",
//	or anything the permissive parser accepts ("Aug 15 2025", "8/15/2025").
//
// Time cells are reduced to zero-padded 24-hour "HH:MM":
//
//	"9:5" -> "09:05", "2:30 PM" -> "14:30", "오후 2시 30분" -> "14:30",
//	"930" -> "09:30", "0.375" (fraction of a day) -> "09:00".
//
// A row whose required date or time cannot be parsed is dropped on its own;
// the rest of the file still loads.
//
// # Stop IDs
//
// ARS stop ids are compared as 5-digit zero-padded strings. Separators and
// noise are stripped ("01-001" -> "01001", "1001" -> "01001"). The route-lookup
// batch additionally accepts only ids shaped like "01xxx" or "01-xxx".
//
// # Feedback
//
// Feedback rows are keyed by an MD5 digest of date|start|end|location|text
// (see [DupeKey]). The digest matches logs written before this service existed,
// so old and new rows de-duplicate against each other.
package domain
