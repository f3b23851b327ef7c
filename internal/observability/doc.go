// Package observability provides the structured logger and Prometheus
// metrics shared by the storefront server and its commands.
package observability
