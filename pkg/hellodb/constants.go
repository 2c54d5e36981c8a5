package hellodb

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Greeting retrieved or server stopped cleanly
	ExitGeneralError    = 1  // Unknown or unclassified error, including secret lookups
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Database unreachable or rejected the query
)

const (
	// DefaultAppName is reported to PostgreSQL as application_name.
	DefaultAppName = "hellodb"

	// DefaultDatabasePort is the standard PostgreSQL port.
	DefaultDatabasePort = 5432

	// DefaultHTTPPort is the port the HTTP server listens on when CONTAINER_PORT is unset.
	DefaultHTTPPort = 3000

	// DefaultAWSRegion is used when AWS_REGION is unset.
	DefaultAWSRegion = "us-east-1"

	// DefaultSecretMaxAttempts bounds the parameter store client's internal retries.
	DefaultSecretMaxAttempts = 3

	// DefaultSecretTimeout bounds a single parameter store HTTP call.
	DefaultSecretTimeout = 30 * time.Second

	// DefaultConnectTimeout bounds establishing the database connection.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultIdleTimeout is sent as idle_in_transaction_session_timeout.
	DefaultIdleTimeout = 30 * time.Second

	// DefaultQueryTimeout bounds the greeting query.
	DefaultQueryTimeout = 60 * time.Second

	// DefaultCloseTimeout bounds the disconnect step, which runs even after
	// the caller's context is cancelled.
	DefaultCloseTimeout = 5 * time.Second

	// DefaultShutdownTimeout bounds graceful HTTP shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// GreetingQuery fetches the most recently created greeting.
const GreetingQuery = "SELECT message FROM greetings ORDER BY created_at DESC LIMIT 1"

// NoGreetingMessage is returned as a Success when the greetings table is empty.
const NoGreetingMessage = "No greeting found in the database. Please insert one using: " +
	"INSERT INTO greetings (message, created_at) VALUES ('Hello from DB!', NOW());"

// User-facing descriptions for database failures.
const (
	MessageUnreachable   = "Database connection failed: Cannot reach the database server. Please check network connectivity."
	MessageAuthFailed    = "Database authentication failed: Invalid username or password."
	MessageMissingObject = "Database error: The specified database or table does not exist."
	messageOtherPrefix   = "Database error: "
)
