package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component names the subsystem an entry comes from. It is written as
// the entry's top-level component.
func Component(name string) Field {
	return String(keyComponent, name)
}

// Session tags entries with the layout session they belong to
func Session(id string) Field {
	return String(keySession, id)
}

func NodeKey(key string) Field {
	return String("node_key", key)
}

func EdgeKey(key string) Field {
	return String("edge_key", key)
}

func Page(p int) Field {
	return Int("page", p)
}

func Alpha(a float64) Field {
	return Float64("alpha", a)
}

func Tick(n uint64) Field {
	return Uint64("tick", n)
}

// Threshold records one step of the prune schedule
func Threshold(maxDistance, minLinks int) Field {
	return Any("threshold", map[string]int{"max_distance": maxDistance, "min_links": minLinks})
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
