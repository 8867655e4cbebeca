// Package coverage builds the coverage-agent process argument from an
// extension whose values are resolved dynamically, so convention defaults
// and ad hoc overrides both feed the final argument string.
package coverage

import (
	"fmt"
	"strconv"
	"strings"

	dynamic "github.com/goliatone/go-dynamic"
)

// OutputMode identifies where the agent writes execution data.
type OutputMode string

const (
	OutputFile      OutputMode = "FILE"
	OutputTCPServer OutputMode = "TCP_SERVER"
	OutputTCPClient OutputMode = "TCP_CLIENT"
	OutputNone      OutputMode = "NONE"
)

// AsArg returns the mode in the format the agent argument expects.
func (m OutputMode) AsArg() string {
	return strings.ReplaceAll(strings.ToLower(string(m)), "_", "")
}

// AgentExtension holds the declared configuration of the coverage agent.
// Tasks expose it through a dynamic.FieldView so builds can override any
// field by property name.
type AgentExtension struct {
	Enabled                  bool
	DestinationFile          string
	Append                   bool
	Includes                 []string
	Excludes                 []string
	ExcludeClassLoaders      []string
	IncludeNoLocationClasses bool
	SessionID                string
	DumpOnExit               bool
	Output                   OutputMode
	Address                  string
	Port                     int
	ClassDumpDir             string
	JMX                      bool
}

// NewAgentExtension returns an extension with the agent's defaults.
func NewAgentExtension() *AgentExtension {
	return &AgentExtension{
		Enabled:    true,
		Append:     true,
		DumpOnExit: true,
		Output:     OutputFile,
	}
}

// AsView exposes the extension's fields as a dynamic surface.
func (e *AgentExtension) AsView() dynamic.View {
	return dynamic.NewFieldView(e, dynamic.WithFieldViewName("coverage agent extension"))
}

// JVMArg formats the full agent argument for agentPath from the
// extension's current field values.
func (e *AgentExtension) JVMArg(agentPath string) string {
	return buildJVMArg(agentPath, e.AsView())
}

// JVMArgFrom formats the agent argument reading every value through view,
// so values contributed by conventions, extensions, or overrides win over
// the declared defaults. Values the view does not resolve are omitted.
func JVMArgFrom(agentPath string, view dynamic.View) string {
	return buildJVMArg(agentPath, view)
}

func buildJVMArg(agentPath string, view dynamic.View) string {
	builder := &strings.Builder{}
	builder.WriteString("-javaagent:")
	builder.WriteString(agentPath)
	builder.WriteByte('=')

	appender := &argumentAppender{builder: builder}
	appender.append("destfile", resolve(view, "destinationFile"))
	appender.append("append", resolve(view, "append"))
	appender.append("includes", resolve(view, "includes"))
	appender.append("excludes", resolve(view, "excludes"))
	appender.append("exclclassloader", resolve(view, "excludeClassLoaders"))
	appender.append("inclnolocationclasses", resolve(view, "includeNoLocationClasses"))
	appender.append("sessionid", resolve(view, "sessionID"))
	appender.append("dumponexit", resolve(view, "dumpOnExit"))
	appender.append("output", outputArg(resolve(view, "output")))
	appender.append("address", resolve(view, "address"))
	appender.append("port", resolve(view, "port"))
	appender.append("classdumpdir", resolve(view, "classDumpDir"))
	appender.append("jmx", resolve(view, "jmx"))

	return builder.String()
}

func resolve(view dynamic.View, name string) any {
	if view == nil || !view.HasProperty(name) {
		return nil
	}
	value, err := view.Property(name)
	if err != nil {
		return nil
	}
	return value
}

func outputArg(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case OutputMode:
		return v.AsArg()
	case string:
		return OutputMode(v).AsArg()
	default:
		return v
	}
}

// argumentAppender joins key=value pairs with commas, skipping nil values,
// empty strings and empty collections, and joining list values with colons.
type argumentAppender struct {
	builder *strings.Builder
	anyArgs bool
}

func (a *argumentAppender) append(name string, value any) {
	formatted, ok := formatValue(value)
	if !ok {
		return
	}
	if a.anyArgs {
		a.builder.WriteByte(',')
	}
	a.builder.WriteString(name)
	a.builder.WriteByte('=')
	a.builder.WriteString(formatted)
	a.anyArgs = true
}

func formatValue(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		if v == 0 {
			return "", false
		}
		return strconv.Itoa(v), true
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return strings.Join(v, ":"), true
	case []any:
		if len(v) == 0 {
			return "", false
		}
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ":"), true
	default:
		return fmt.Sprint(v), true
	}
}
