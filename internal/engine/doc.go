// Package engine runs an external Whisper-family CLI over one audio file
// and renders its JSON segments into the timestamped transcript format
// the rest of the pipeline writes to disk. Two engines are supported:
// the reference whisper CLI and the CTranslate2 port, selected by
// configuration.
package engine
