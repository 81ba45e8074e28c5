package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeOpened() string {
	return `Registers a Python file as open and computes its radon metrics in the background.

USE WHEN:
- Starting to work on a Python file
- Before calling get_annotations for a file not yet open

Content is optional; the file is read from disk when it is omitted. Radon always analyzes
the file on disk, so unsaved content only affects where annotations are placed.`
}

func describeSaved() string {
	return `Records that a Python file was saved and recomputes its radon metrics in the background.

USE WHEN:
- After writing changes to disk
- After an external tool rewrote the file`
}

func describeEdited() string {
	return `Records unsaved text of an open Python file.

Complexity annotations are hidden until the next save, since block positions no longer match
the edited text. Maintainability stays cached. Content is required.`
}

func describeFocused() string {
	return `Makes a Python file the active document and recomputes its radon metrics.

The active document is the one the annotations resource describes and get_annotations uses
when no path is given. A file that was never opened is read from disk.`
}

func describeClosed() string {
	return `Forgets a Python file and drops its cached metrics. A refresh still running for it is discarded.`
}

func describeEvent() string {
	return `Delivers one document lifecycle event by name, for hosts that forward editor events as-is.

Events: opened, saved, edited, active-changed, closed. Behaves like the matching document_*
tool. Content is used by opened, saved and edited; opened and saved read the file when it is
omitted.`
}

func describeAnnotations() string {
	return `Returns radon complexity annotations and the maintainability indicator of a Python file.

USE WHEN:
- Finding functions, methods and classes that are hard to test or maintain
- Reviewing a file before refactoring
- Checking whether a change made a block more complex

INTERPRETING RESULTS:
- One annotation per function, method, class or closure: rank A-F and cyclomatic complexity
- A (1-5) low risk, B (6-10) low, C (11-20) moderate, D (21-30) more than moderate,
  E (31-40) high, F (41+) very high
- The last annotation sits on the first word of the file and carries the maintainability index
- Maintainability index: 20 and up is healthy, 10 to 20 is a warning, below 10 is an error

METRICS RETURNED:
- annotations: range (zero-based line and character), rank, title, tooltip
- status: text "index (rank)", tier normal/warning/error
- error: set when refresh is true and radon failed

An empty list means the file has no blocks, rendering is disabled, or it was edited since the
last save. Set refresh to run radon and wait for the result.`
}

func describeStatus() string {
	return `Returns the state of the radon lens: whether annotations are enabled, the radon executable,
open documents, the last maintainability indicator, metrics cache counters, and recent
failures with suggested fixes.

USE WHEN:
- Annotations are unexpectedly empty
- Checking whether radon is installed and recent enough (5.1 or later)

Failures with code TOOL_NOT_FOUND or UNSUPPORTED_TOOL_VERSION carry two fixes: edit the
radon.executable setting, or call install_radon.`
}

func describeSetEnabled() string {
	return `Turns rendering of radon annotations on or off. The choice is saved to the config file.`
}

func describeInstall() string {
	return `Installs radon with the configured install command (default: pip install --user "radon>=5.1")
and reports the installed version.

USE WHEN:
- get_status reports TOOL_NOT_FOUND or UNSUPPORTED_TOOL_VERSION`
}
