package metrics

import "time"

// RecordInsert records a completed AddItems call against the registry.
func (r *Registry) RecordInsert(count int, elapsed time.Duration) {
	r.InsertDuration.Observe(elapsed.Seconds())
	r.InsertItemsTotal.Add(float64(count))
}

// RecordSearch records a completed KnnSearch call against the registry.
func (r *Registry) RecordSearch(resultCount int, elapsed time.Duration, retries int, cancelled bool) {
	label := "false"
	if cancelled {
		label = "true"
	}
	r.SearchDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	r.SearchResultsReturned.Observe(float64(resultCount))
	r.SearchGraphChangedRetries.Add(float64(retries))
}

// RecordRemove records a completed RemoveItem call, including how many
// local-repair passes it triggered.
func (r *Registry) RecordRemove(elapsed time.Duration, localRepairs int) {
	r.RemoveDuration.Observe(elapsed.Seconds())
	r.RemoveLocalRepairsTotal.Add(float64(localRepairs))
}

// RecordSerialize records the size of a completed SerializeGraph call.
func (r *Registry) RecordSerialize(bytesWritten int) {
	r.SerializeBytesTotal.Add(float64(bytesWritten))
}

// RecordDeserialize records a completed DeserializeGraph call.
func (r *Registry) RecordDeserialize(elapsed time.Duration) {
	r.DeserializeDuration.Observe(elapsed.Seconds())
}

// SetGraphSize updates the gauge pair describing current graph shape.
func (r *Registry) SetGraphSize(liveNodes, entryPointLayer int) {
	r.GraphNodesTotal.Set(float64(liveNodes))
	r.GraphEntryPointLayer.Set(float64(entryPointLayer))
}
