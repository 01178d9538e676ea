package shipments

import "context"

// Fetcher reads the shipment and assignment sheets and classifies failures.
type Fetcher struct {
	source RecordSource
}

// NewFetcher wraps a record source.
func NewFetcher(source RecordSource) *Fetcher {
	return &Fetcher{source: source}
}

// Shipments issues one read against the shipment endpoint.
func (f *Fetcher) Shipments(ctx context.Context) ([]ShipmentRecord, error) {
	if f == nil || f.source == nil {
		return nil, ClassifyFetchError(errMissingSource)
	}
	records, err := f.source.FetchShipments(ctx)
	if err != nil {
		return nil, ClassifyFetchError(err)
	}
	if records == nil {
		records = []ShipmentRecord{}
	}
	return records, nil
}

// Assignments issues one read against the assignment endpoint and indexes it
// by AWB number.
func (f *Fetcher) Assignments(ctx context.Context) (AssignmentIndex, error) {
	if f == nil || f.source == nil {
		return nil, ClassifyFetchError(errMissingSource)
	}
	rows, err := f.source.FetchAssignments(ctx)
	if err != nil {
		return nil, ClassifyFetchError(err)
	}
	return NewAssignmentIndex(rows), nil
}

// mergeAssignments applies the index onto records. Rows without an index
// entry keep their own PickUpPersonName column.
func mergeAssignments(records []ShipmentRecord, index AssignmentIndex) []ShipmentRecord {
	merged := cloneRecords(records)
	if len(index) == 0 {
		return merged
	}
	for i := range merged {
		if person, ok := index[merged[i].AWBNumber]; ok {
			merged[i].PickUpPersonName = person
		}
	}
	return merged
}
