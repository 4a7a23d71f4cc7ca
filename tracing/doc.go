// Package tracing installs OpenTelemetry tracer providers for programs that
// drive cosched schedulers. Schedulers record their spans through the
// global provider unless given a tracer explicitly, so installing a
// provider here is enough to see every Resume and Destroy.
package tracing
