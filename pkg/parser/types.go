// Package parser provides HAProxy log line parsing and raw line sources.
package parser

import "time"

// LogEntry is the structured view of one valid HAProxy HTTP-format log line.
// Entries are immutable once constructed; AcceptDate is always present and is
// the canonical chronological key.
type LogEntry struct {
	// ClientIP and ClientPort identify the connecting client.
	ClientIP   string
	ClientPort int

	// AcceptDate is when HAProxy accepted the connection.
	AcceptDate time.Time

	// FrontendName is the listener that accepted the connection.
	FrontendName string

	// BackendName and ServerName identify where the request was dispatched.
	// ServerName is "<NOSRV>" when the request never reached a server.
	BackendName string
	ServerName  string

	// Timers, all in milliseconds. A timer is -1 when the connection
	// aborted before that phase completed.
	TimeWaitRequest   int // Tq: waiting for a complete request
	TimeWaitQueues    int // Tw: waiting in the various queues
	TimeConnectServer int // Tc: establishing the server connection
	TimeWaitResponse  int // Tr: waiting for the server response
	TotalTime         int // Tt: total session duration

	StatusCode int
	BytesRead  int

	// Connection counters at accept time.
	ConnActive   int
	ConnFrontend int
	ConnBackend  int
	ConnServer   int
	Retries      int

	// QueueServer and QueueBackend are the number of requests queued ahead
	// of this one in the server and backend queues at accept time.
	QueueServer  int
	QueueBackend int

	// CapturedRequestHeaders and CapturedResponseHeaders hold the raw
	// bracketed capture blocks (e.g. "{1.2.3.4}"), nil when header capture
	// is disabled or the block is absent from the line.
	CapturedRequestHeaders  *string
	CapturedResponseHeaders *string

	// HTTPMethod, HTTPPath and HTTPProtocol come from the quoted request
	// text. All three are empty when the request text is unparsable
	// (e.g. "<BADREQ>").
	HTTPMethod   string
	HTTPPath     string
	HTTPProtocol string
}
