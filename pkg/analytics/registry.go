package analytics

import "strconv"

// Kind discriminates the value shape a command returns.
type Kind string

const (
	KindCount     Kind = "count"
	KindHistogram Kind = "histogram"
	KindDurations Kind = "durations"
	KindTopIPs    Kind = "top_ips"
	KindPeaks     Kind = "peaks"
)

// Result is the outcome of one analytics command. Exactly one value field
// is populated, indicated by Kind. Histogram iteration order is not
// specified; formatters choose their own ordering.
type Result struct {
	Kind      Kind           `json:"kind"`
	Count     int            `json:"count,omitempty"`
	Histogram map[string]int `json:"histogram,omitempty"`
	Durations []int          `json:"durations,omitempty"`
	TopIPs    []IPCount      `json:"top_ips,omitempty"`
	Peaks     []QueuePeak    `json:"peaks,omitempty"`
}

// Command binds a stable command name to its implementation.
type Command struct {
	// Name is the identifier used for dispatch (e.g. on the command line).
	Name string

	// Description is a one-line summary for listings.
	Description string

	// Run executes the command against a command set.
	Run func(c *Commands) Result
}

// registry is the explicit, statically enumerated command catalogue.
// It is built once and never mutated; dispatchers must not rely on any
// runtime discovery beyond this table.
var registry = []Command{
	{
		Name:        "counter",
		Description: "Number of valid log lines",
		Run: func(c *Commands) Result {
			return Result{Kind: KindCount, Count: c.Counter()}
		},
	},
	{
		Name:        "counter_invalid",
		Description: "Number of lines that could not be parsed",
		Run: func(c *Commands) Result {
			return Result{Kind: KindCount, Count: c.CounterInvalid()}
		},
	},
	{
		Name:        "http_methods",
		Description: "Requests per HTTP method",
		Run: func(c *Commands) Result {
			return Result{Kind: KindHistogram, Histogram: c.HTTPMethods()}
		},
	},
	{
		Name:        "status_codes_counter",
		Description: "Requests per HTTP status code",
		Run: func(c *Commands) Result {
			histogram := make(map[string]int)
			for code, count := range c.StatusCodes() {
				histogram[strconv.Itoa(code)] = count
			}
			return Result{Kind: KindHistogram, Histogram: histogram}
		},
	},
	{
		Name:        "request_path_counter",
		Description: "Requests per path",
		Run: func(c *Commands) Result {
			return Result{Kind: KindHistogram, Histogram: c.RequestPaths()}
		},
	},
	{
		Name:        "server_load",
		Description: "Requests handled per downstream server",
		Run: func(c *Commands) Result {
			return Result{Kind: KindHistogram, Histogram: c.ServerLoad()}
		},
	},
	{
		Name:        "ip_counter",
		Description: "Requests per captured client address",
		Run: func(c *Commands) Result {
			return Result{Kind: KindHistogram, Histogram: c.IPCounter()}
		},
	},
	{
		Name:        "slow_requests",
		Description: "Response times above the slow-request threshold",
		Run: func(c *Commands) Result {
			return Result{Kind: KindDurations, Durations: c.SlowRequests()}
		},
	},
	{
		Name:        "top_ips",
		Description: "Most frequent captured client addresses",
		Run: func(c *Commands) Result {
			return Result{Kind: KindTopIPs, TopIPs: c.TopIPs()}
		},
	},
	{
		Name:        "queue_peaks",
		Description: "Backend queue congestion peaks",
		Run: func(c *Commands) Result {
			return Result{Kind: KindPeaks, Peaks: c.QueuePeaks()}
		},
	},
}

// Registry returns the command catalogue in its stable listing order.
// The returned slice is a copy; modifying it does not affect dispatch.
func Registry() []Command {
	commands := make([]Command, len(registry))
	copy(commands, registry)
	return commands
}

// Lookup finds a command by name.
func Lookup(name string) (Command, bool) {
	for _, command := range registry {
		if command.Name == name {
			return command, true
		}
	}
	return Command{}, false
}

// Names returns the available command names in listing order.
func Names() []string {
	names := make([]string, len(registry))
	for i, command := range registry {
		names[i] = command.Name
	}
	return names
}
