package sink

import "fmt"

// Open builds a Sink for the configured driver ("jsonl" or "sqlite").
func Open(driver, path string) (Sink, error) {
	switch driver {
	case "jsonl":
		return NewJSONL(path)
	case "sqlite":
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("sink: unknown driver %q", driver)
	}
}
