package notify

import "time"

// Target is one webhook destination. An empty Seasons list matches every
// season; an empty Events list allows every event type.
type Target struct {
	Platform string   `yaml:"platform"`
	Endpoint string   `yaml:"endpoint"`
	Secret   string   `yaml:"secret"`
	Seasons  []string `yaml:"seasons"`
	Events   []string `yaml:"events"`
	Enabled  bool     `yaml:"enabled"`
}

type Config struct {
	Enabled             bool
	ConfigPath          string
	Targets             []Target
	Workers             int
	RetryMax            int
	RetryBase           time.Duration
	FailureThreshold    int
	CircuitOpenDuration time.Duration
	RequestTimeout      time.Duration
	DispatchBuffer      int
}

type Event struct {
	Type     string
	SeasonID string
}

type job struct {
	Target  Target
	Event   Event
	Message Message
	Attempt int
}

func (j job) key() string {
	return targetKey(j.Target)
}

func targetKey(t Target) string {
	return t.Platform + "|" + t.Endpoint
}
