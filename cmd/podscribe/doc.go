// Command podscribe is the podcast transcription daemon and its CLI.
package main
