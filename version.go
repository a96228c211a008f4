package rlox

// Version of the interpreter, reported by the CLI.
const Version = "0.3.0"
