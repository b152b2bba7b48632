package segment

// ChunkSize is the target cardinality of a chunk (spec §3 Chunk, C3).
// Every chunk in a segment holds exactly ChunkSize postings except the
// last, which is shorter but non-empty whenever the segment is non-empty.
// Writer applies this bound incrementally as postings arrive (see
// writer.go's flush), rather than slicing a fully materialized run,
// since the merger's input stream has no known total length up front.
const ChunkSize = 4096
