// Package msgs encodes device reports for the wire.
package msgs

// Readings are carried as protobuf Struct messages so any MQTT
// consumer with the well-known types can decode them without
// a schema of its own.
