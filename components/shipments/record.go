package shipments

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Sheet column names.
const (
	ColumnAWBNumber            = "AWB_NUMBER"
	ColumnStatus               = "STATUS"
	ColumnName                 = "NAME"
	ColumnConsigneeName        = "CONSIGNEE_NAME"
	ColumnDestination          = "DESTINATION"
	ColumnActualWeight         = "ACTUAL_WEIGHT"
	ColumnPostPickupWeight     = "POST_PICKUP_WEIGHT"
	ColumnPostNumberOfPackages = "POST_NUMBER_OF_PACKAGES"
	ColumnPhoneNumber          = "PHONENUMBER"
	ColumnVendorName           = "VENDOR_NAME"
	ColumnLatitude             = "LATITUDE"
	ColumnLongitude            = "LONGITUDE"
	ColumnPickUpPersonName     = "PickUpPersonName"
)

func (r *ShipmentRecord) fields() map[string]*string {
	status := (*string)(&r.Status)
	return map[string]*string{
		ColumnAWBNumber:            &r.AWBNumber,
		ColumnStatus:               status,
		ColumnName:                 &r.Name,
		ColumnConsigneeName:        &r.ConsigneeName,
		ColumnDestination:          &r.Destination,
		ColumnActualWeight:         &r.ActualWeight,
		ColumnPostPickupWeight:     &r.PostPickupWeight,
		ColumnPostNumberOfPackages: &r.PostNumberOfPackages,
		ColumnPhoneNumber:          &r.PhoneNumber,
		ColumnVendorName:           &r.VendorName,
		ColumnLatitude:             &r.Latitude,
		ColumnLongitude:            &r.Longitude,
		ColumnPickUpPersonName:     &r.PickUpPersonName,
	}
}

// UnmarshalJSON accepts a sheet row object. Cells may arrive as strings,
// numbers, booleans or null; all are kept as strings.
func (r *ShipmentRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("shipments: decode record: %w", err)
	}
	*r = ShipmentRecord{}
	fields := r.fields()
	for key, value := range raw {
		cell := cellString(value)
		if target, ok := fields[key]; ok {
			*target = cell
			continue
		}
		if r.Extra == nil {
			r.Extra = map[string]string{}
		}
		r.Extra[key] = cell
	}
	return nil
}

// MarshalJSON writes the record back in sheet column form.
func (r ShipmentRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, len(r.Extra)+13)
	for key, value := range r.Extra {
		out[key] = value
	}
	for key, value := range r.fields() {
		out[key] = *value
	}
	return json.Marshal(out)
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func cloneRecords(records []ShipmentRecord) []ShipmentRecord {
	if records == nil {
		return nil
	}
	out := make([]ShipmentRecord, len(records))
	copy(out, records)
	return out
}
