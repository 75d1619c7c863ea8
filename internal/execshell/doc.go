// Package execshell runs external tools (git, gh, sh) and reports their outcome as data.
//
// OSCommandRunner spawns processes through os/exec and decodes their output
// leniently. ShellExecutor layers lifecycle reporting on top and offers two
// modes: Capture, where a non-zero exit code is part of the result, and
// Execute, where it becomes a CommandFailedError.
package execshell
