package cli

import (
	"strconv"
	"strings"
)

// normalizeSizeArgs rewrites "-s W H" and "--size W H" into "--size=W,H" so
// the two-value form can be parsed as a single flag. "WxH" is accepted too.
func normalizeSizeArgs(args []string) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}
		if arg != "-s" && arg != "--size" {
			out = append(out, arg)
			continue
		}

		if i+2 < len(args) && isInt(args[i+1]) && isInt(args[i+2]) {
			out = append(out, "--size="+args[i+1]+","+args[i+2])
			i += 2
			continue
		}
		if i+1 < len(args) && strings.Count(strings.ToLower(args[i+1]), "x") == 1 {
			out = append(out, "--size="+strings.Replace(strings.ToLower(args[i+1]), "x", ",", 1))
			i++
			continue
		}

		out = append(out, arg)
	}

	return out
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
