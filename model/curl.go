package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

const APICallModeCurl = "curl"

var ErrEmptyCurlCommand = errors.New("curl command has no url")

// CurlRequest is the request described by a pasted curl command line
type CurlRequest struct {
	URL     string
	Method  string
	Headers []string
	Body    string
}

// ParseCurl understands the subset of curl the editor generates: -X, -H and
// -d (plus their long forms). Method defaults to POST when a body is given.
func ParseCurl(command string) (*CurlRequest, error) {
	args, err := splitCurlWords(command)
	if err != nil {
		return nil, err
	}

	req := &CurlRequest{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return ""
		}

		switch {
		case arg == "curl" && i == 0:
		case arg == "-X" || arg == "--request":
			req.Method = strings.ToUpper(next())
		case arg == "-H" || arg == "--header":
			if h := strings.TrimSpace(next()); h != "" {
				req.Headers = append(req.Headers, h)
			}
		case arg == "-d" || arg == "--data" || arg == "--data-raw" || arg == "--data-binary":
			req.Body = next()
		case strings.HasPrefix(arg, "-X") && len(arg) > 2:
			req.Method = strings.ToUpper(arg[2:])
		case strings.HasPrefix(arg, "-"):
			// flags we don't model, e.g. -s or --compressed
		default:
			if req.URL == "" {
				req.URL = arg
			}
		}
	}

	if req.URL == "" {
		return nil, ErrEmptyCurlCommand
	}

	if req.Method == "" {
		if req.Body != "" {
			req.Method = "POST"
		} else {
			req.Method = "GET"
		}
	}

	return req, nil
}

// shell line continuations, joined before splitting
var lineContinuation = strings.NewReplacer("\\\r\n", " ", "\\\n", " ")

// splitCurlWords splits a pasted command line into words. Parsing stops at an
// unquoted shell operator such as | or &&.
func splitCurlWords(command string) ([]string, error) {
	args, err := shellwords.NewParser().Parse(lineContinuation.Replace(command))
	if err != nil {
		return nil, fmt.Errorf("cannot parse curl command: %w", err)
	}
	return args, nil
}

// applyCurl fills url, method, headers and body from the curl command when
// the node is in curl mode. An unparsable command leaves the fields alone so
// validation reports the missing url.
func (d *APICallData) applyCurl() {
	if d.Mode != APICallModeCurl || strings.TrimSpace(d.CurlCommand) == "" {
		return
	}

	req, err := ParseCurl(d.CurlCommand)
	if err != nil {
		return
	}

	d.URL = req.URL
	d.Method = req.Method
	d.Headers = strings.Join(req.Headers, "\n")
	d.Body = req.Body
}
