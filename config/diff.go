package config

import "reflect"

// diffEvent compares two configuration values field by field and builds
// the Event describing what changed. Only top-level struct fields are
// reported; a change anywhere inside a nested struct names that struct's
// field.
func diffEvent(oldCfg, newCfg any) Event {
	ev := Event{OldConfig: oldCfg, NewConfig: newCfg}
	if oldCfg == nil || newCfg == nil {
		return ev
	}

	oldVal := reflect.Indirect(reflect.ValueOf(oldCfg))
	newVal := reflect.Indirect(reflect.ValueOf(newCfg))
	if oldVal.Kind() != reflect.Struct || newVal.Kind() != reflect.Struct {
		return ev
	}
	if oldVal.Type() != newVal.Type() {
		return ev
	}

	for i := 0; i < oldVal.NumField(); i++ {
		if !reflect.DeepEqual(oldVal.Field(i).Interface(), newVal.Field(i).Interface()) {
			ev.ChangedKeys = append(ev.ChangedKeys, oldVal.Type().Field(i).Name)
		}
	}
	return ev
}
