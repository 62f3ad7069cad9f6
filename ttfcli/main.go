package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/truetype"
	"github.com/npillmayer/truetype/ttf"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.truetype'
func tracer() tracing.Trace {
	return tracing.Select("font.truetype")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":     "go",
		"trace.font.truetype": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load")
	fontindex := flag.Int("index", 0, "Font index within a collection file")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError)    // will set the correct level later
	pterm.Info.Println("Welcome to TrueType CLI") // colored welcome message
	//
	// set up REPL
	repl, err := readline.New("ttf > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	if err := intp.loadFont(*fontname, *fontindex); err != nil { // font name provided by flag
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font     *ttf.Font
	fontname string
	repl     *readline.Instance
}

func (intp *Intp) String() string {
	if intp == nil || intp.font == nil {
		return "()"
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("( font=%s", intp.fontname))
	if intp.font.IsVariable() {
		sb.WriteString(fmt.Sprintf(" coords=%v", intp.font.Coords()))
	}
	sb.WriteString(" )")
	return sb.String()
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		cmd, err := intp.parseCommand(line)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		err, quit := intp.execute(cmd)
		if err != nil {
			tracer().Errorf(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

type Op struct {
	code int
	arg  string
	arg2 string
}

type Command struct {
	count int
	op    [32]Op
}

const NOOP = -1
const (
	// op-code QUIT will not have arguments
	QUIT int = iota
	// op-codes below may have arguments
	HELP
	TABLES
	INFO
	HEAD
	MAXP
	AXES
	VARIATION
	GLYPH
	OUTLINE
	ISSUES
)

var opMap = map[string]int{
	"quit":    QUIT,
	"help":    HELP,
	"tables":  TABLES,
	"info":    INFO,
	"head":    HEAD,
	"maxp":    MAXP,
	"axes":    AXES,
	"var":     VARIATION,
	"glyph":   GLYPH,
	"outline": OUTLINE,
	"errors":  ISSUES,
}

var opNames = []string{
	"quit",
	"help",
	"tables",
	"info",
	"head",
	"maxp",
	"axes",
	"var",
	"glyph",
	"outline",
	"errors",
}

var command = Command{}

func resetCommand() {
	command.count = 0
	for i := range command.op {
		command.op[i].code = NOOP
		command.op[i].arg = ""
		command.op[i].arg2 = ""
	}
}

func (intp *Intp) parseCommand(line string) (*Command, error) {
	resetCommand()
	steps := strings.Split(line, " ")
	command.count = len(steps)
	for i, step := range steps {
		c := strings.Split(step, ":") // e.g.  "var:wght:700" or "glyph:5" or "help"
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		command.op[i].code = code
		if command.op[i].code == QUIT {
			return &command, nil
		}
		command.op[i].arg = getOptArg(c, 1)
		command.op[i].arg2 = getOptArg(c, 2)
		if command.op[i].arg == "" {
			tracer().Debugf("%s", opNames[command.op[i].code])
		} else {
			tracer().Debugf("%s: looking for '%s'", opNames[command.op[i].code], command.op[i].arg)
		}
	}
	return &command, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:      quitOp,
	HELP:      helpOp,
	TABLES:    tablesOp,
	INFO:      infoOp,
	HEAD:      headOp,
	MAXP:      maxpOp,
	AXES:      axesOp,
	VARIATION: variationOp,
	GLYPH:     glyphOp,
	OUTLINE:   outlineOp,
	ISSUES:    issuesOp,
}

func (intp *Intp) execute(cmd *Command) (err error, stop bool) {
	tracer().Debugf("cmd = %v", cmd.op)
	for _, c := range cmd.op {
		if c.code == NOOP {
			break
		}
		f, ok := commandFn[c.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", c.code)
			return nil, false
		}
		err, stop = f(intp, &c)
		if err != nil {
			pterm.Error.Println(err)
			return
		}
		if stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string, index int) error {
	f, err := truetype.LoadFont(fontname)
	if err != nil {
		tracer().Errorf("cannot load font %s: %s", fontname, err)
		return err
	}
	if index > 0 {
		if intp.font, err = ttf.ParseCollectionEntry(f.Binary, index); err != nil {
			tracer().Errorf("cannot decode collection entry %d: %s", index, err)
			return err
		}
	} else {
		intp.font = f.Font
	}
	intp.fontname = f.Fontname
	if intp.fontname == "" {
		intp.fontname = fontname
	}
	pterm.Printf("font tables: %v\n", intp.font.TableTags())
	return nil
}

// ----------------------------------------------------------------------

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}
