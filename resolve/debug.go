package resolve

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
)

// debugWriter outputs a JSON object per machine step.
type debugWriter struct {
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
	log *slog.Logger
}

type debugStep struct {
	Step         int      `json:"step"`
	Task         string   `json:"task"`
	Goals        int      `json:"goals"`
	CHS          []string `json:"chs"`
	Vars         int      `json:"vars"`
	ChoicePoints int      `json:"choice_points"`
}

func newDebugWriter(filename string, log *slog.Logger) *debugWriter {
	f, err := os.Create(filename)
	if err != nil {
		log.Error("failed to open debug file", "file", filename, "err", err)
		return nil
	}
	w := bufio.NewWriter(f)
	return &debugWriter{f: f, w: w, enc: json.NewEncoder(w), log: log}
}

func (d *debugWriter) write(step int, st state, cp *choicePoint) {
	if d == nil {
		return
	}
	var chs []string
	itr := st.chs.Iterator()
	for !itr.Done() {
		_, e := itr.Next()
		chs = append(chs, e.status.String()+" "+st.store.ResolveLiteral(e.lit).String())
	}
	n := 0
	for ; cp != nil; cp = cp.prev {
		n++
	}
	data := debugStep{
		Step:         step,
		Task:         st.goals.task.String(),
		Goals:        st.goals.len(),
		CHS:          chs,
		Vars:         st.store.Len(),
		ChoicePoints: n,
	}
	if err := d.enc.Encode(data); err != nil {
		d.log.Error("failed to write debug step", "err", err)
	}
}

func (d *debugWriter) close() error {
	if err := d.w.Flush(); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}
