package commands

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/clasp-io/clasp"
	"github.com/clasp-io/clasp/errors"
)

// Example pairs a filename (no path, no extension) with an object to
// encode. TestGenCmd writes it out as <name>.json and <name>.bin.
type Example struct {
	Filename string
	Obj      clasp.Persistent
}

// TestGenCmd writes fixture files for client developers: every example
// object in both its JSON and its binary encoding. Files land in
// ./testdata or in the directory named by the first argument.
func TestGenCmd(examples []Example, args []string) error {
	outDir := "testdata"
	if len(args) > 0 {
		outDir = args[0]
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	for _, ex := range examples {
		if err := writeExample(outDir, ex); err != nil {
			return errors.Wrap(err, ex.Filename)
		}
	}
	return nil
}

func writeExample(dir string, ex Example) error {
	raw, err := json.Marshal(ex.Obj)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(filepath.Join(dir, ex.Filename+".json"), raw, 0644); err != nil {
		return err
	}
	bin, err := ex.Obj.Marshal()
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filepath.Join(dir, ex.Filename+".bin"), bin, 0644)
}
