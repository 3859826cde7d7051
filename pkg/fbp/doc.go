// Package fbp defines the flow-based-program graph model and its loaders.
//
// A [Graph] is a set of processes (nodes) running components, wired
// together through named ports. Besides process-to-process [Edge]s a graph
// carries [Initializer]s (literal values sent to a port when the network
// starts) and exported ports that make an inner port reachable from outside
// the graph.
//
// # Formats
//
// [Load] picks a decoder from the file extension:
//
//   - .json: the NoFlo JSON graph format (properties, processes,
//     connections, inports, outports)
//   - .yaml, .yml: the same document shape written as YAML
//   - .fbp: the FBP domain-specific language
//
// A minimal FBP program:
//
//	# Loop forever
//	INPORT=Read.IN:FILENAME
//	'5' -> IN Repeat(core/Repeat)
//	Repeat OUT -> IN Drop(core/Drop)
//
// Port names are case-insensitive in the DSL and are stored lower-cased,
// the way the NoFlo toolchain stores them.
//
// # Errors
//
// Loader failures are coded with [errors.ErrCodeFileNotFound] when the file
// does not exist and [errors.ErrCodeInvalidGraph] when it cannot be parsed,
// so callers can report the two cases differently.
package fbp
