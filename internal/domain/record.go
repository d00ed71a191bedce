package domain

import "time"

// CleanRecord is one cleaned row in the flat form published downstream.
type CleanRecord struct {
	Station     string             `json:"station"`
	Time        time.Time          `json:"time"`
	Values      map[string]Reading `json:"values"`
	Phase       Phase              `json:"phase,omitempty"`
	PrecipRate  PrecipRate         `json:"precip_rate,omitempty"`
	WaterYear   int                `json:"water_year"`
	RunID       string             `json:"run_id,omitempty"`
	ProcessedAt time.Time          `json:"processed_at"`
}

// Key identifies the record downstream: station and RFC3339 timestamp.
func (r CleanRecord) Key() string {
	return r.Station + "|" + r.Time.Format(time.RFC3339)
}

// Records flattens ds into one CleanRecord per row, all stamped with the same
// run ID and processing time.
func Records(ds *Dataset, runID string) []CleanRecord {
	processedAt := clock.Now().UTC()
	out := make([]CleanRecord, ds.Len())
	for i, t := range ds.times {
		values := make(map[string]Reading, len(ds.order))
		for _, name := range ds.order {
			values[name] = ds.columns[name][i]
		}
		rec := CleanRecord{
			Station:     ds.Station,
			Time:        t,
			Values:      values,
			WaterYear:   WaterYear(t),
			RunID:       runID,
			ProcessedAt: processedAt,
		}
		if ds.phase != nil {
			rec.Phase = ds.phase[i]
		}
		if ds.rate != nil {
			rec.PrecipRate = ds.rate[i]
		}
		out[i] = rec
	}
	return out
}
