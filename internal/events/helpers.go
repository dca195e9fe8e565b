package events

import (
	"encoding/json"
	"fmt"
)

// SetData stores a structured payload in the Data field.
func (e *Event) SetData(data interface{}) error {
	dataMap, err := structToMap(data)
	if err != nil {
		return fmt.Errorf("failed to convert %T: %w", data, err)
	}
	e.Data = dataMap
	return nil
}

// GetStateChangeData retrieves StateChangeData from the Data field.
func (e *Event) GetStateChangeData() (*StateChangeData, error) {
	var data StateChangeData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse StateChangeData: %w", err)
	}
	return &data, nil
}

// GetDeduplicationCompletedData retrieves DeduplicationCompletedData from the Data field.
func (e *Event) GetDeduplicationCompletedData() (*DeduplicationCompletedData, error) {
	var data DeduplicationCompletedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse DeduplicationCompletedData: %w", err)
	}
	return &data, nil
}

// GetValidationCompletedData retrieves ValidationCompletedData from the Data field.
func (e *Event) GetValidationCompletedData() (*ValidationCompletedData, error) {
	var data ValidationCompletedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse ValidationCompletedData: %w", err)
	}
	return &data, nil
}

// GetHistoryUpdatedData retrieves HistoryUpdatedData from the Data field.
func (e *Event) GetHistoryUpdatedData() (*HistoryUpdatedData, error) {
	var data HistoryUpdatedData
	if err := mapToStruct(e.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse HistoryUpdatedData: %w", err)
	}
	return &data, nil
}

// structToMap converts a struct to map[string]interface{} using JSON marshaling.
func structToMap(data interface{}) (map[string]interface{}, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// mapToStruct converts a map[string]interface{} to a struct using JSON unmarshaling.
func mapToStruct(dataMap map[string]interface{}, target interface{}) error {
	bytes, err := json.Marshal(dataMap)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, target)
}
