package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/constants"
	"github.com/jsphweid/hlayout/file"
	"github.com/jsphweid/hlayout/layout"
	"github.com/jsphweid/hlayout/lilypond"
	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/model"
	"github.com/jsphweid/hlayout/quantize"
	"github.com/jsphweid/hlayout/score"
)

var (
	serveMetrics = config.DefaultMetrics()
	scheduler    *layout.Scheduler
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [score]",
	Short: "Serves layout and export over HTTP",
	Long:  `Serves layout and export over HTTP. The optional score is loaded as the live document.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		serveMetrics = loadMetrics()
		comp := score.New("untitled")
		if len(args) == 1 {
			comp = loadComposition(args[0])
		}
		LoadDocument(comp)
		serve(constants.GetListenAddr())
	},
}

// LoadDocument makes comp the live document edited through the document
// endpoints.
func LoadDocument(comp *score.Composition) {
	h := layout.New(comp)
	h.LayoutAll()
	scheduler = layout.NewScheduler(h, constants.RelayoutDelay)
}

func Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/layout", HandleLayout).Methods("POST")
	router.HandleFunc("/export", HandleExport).Methods("POST")
	router.HandleFunc("/document/staves/{staff}/events", HandleAddEvents).Methods("POST")
	router.HandleFunc("/document/staves/{staff}/events", HandleRemoveEvents).Methods("DELETE")
	router.HandleFunc("/document/layout", HandleDocumentLayout).Methods("GET")
	return cors.Default().Handler(router)
}

func serve(addr string) {
	logging.HTTP.Printf("listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, Router()))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	logging.HTTP.Printf("%d: %s", status, msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.HTTP.Printf("could not write response: %v", err)
	}
}

func readComposition(r *http.Request) (*score.Composition, error) {
	reqBody, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	return file.Parse(reqBody, serveMetrics)
}

func HandleLayout(w http.ResponseWriter, r *http.Request) {
	comp, err := readComposition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h := layout.New(comp)
	h.LayoutAll()
	writeJSON(w, h.Response())
}

func HandleExport(w http.ResponseWriter, r *http.Request) {
	comp, err := readComposition(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := lilypond.New(comp).Write(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/x-lilypond; charset=utf-8")
	w.Write(buf.Bytes())
}

// findStaff looks a staff up by its index or by its ID.
func findStaff(comp *score.Composition, key string) *score.Staff {
	if index, err := strconv.Atoi(key); err == nil {
		if index < 0 || index >= len(comp.Staves) {
			return nil
		}
		return comp.Staves[index]
	}
	id, err := uuid.Parse(key)
	if err != nil {
		return nil
	}
	return comp.Staff(id)
}

func readEvents(w http.ResponseWriter, r *http.Request) ([]file.EventDoc, bool) {
	var docs []file.EventDoc
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		writeError(w, http.StatusBadRequest, "Could not decode events: "+err.Error())
		return nil, false
	}
	return docs, true
}

// HandleAddEvents inserts events into a staff of the live document. The
// relayout happens later, coalesced with other edits.
func HandleAddEvents(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["staff"]
	docs, ok := readEvents(w, r)
	if !ok {
		return
	}
	events := make([]*model.Event, 0, len(docs))
	for _, d := range docs {
		e, err := d.Event()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		events = append(events, e)
	}

	var staff *score.Staff
	scheduler.Do(func(h *layout.HLayout) {
		comp := h.Composition()
		if staff = findStaff(comp, key); staff == nil {
			return
		}
		q := quantize.New()
		for _, e := range events {
			q.Quantize(e)
			staff.Segment.Insert(e)
		}
		if err := comp.BuildTimeline(nil); err != nil {
			logging.HTTP.Printf("could not rebuild bar timeline: %v", err)
		}
	})
	if staff == nil {
		writeError(w, http.StatusNotFound, "no staff "+key)
		return
	}
	scheduler.StaffChanged(staff)
	w.WriteHeader(http.StatusAccepted)
}

// matches reports whether e is the event d describes: same type and time,
// and same pitch when d names one.
func matches(e *model.Event, d file.EventDoc) bool {
	if e.Type != d.Type || e.Time != d.Time {
		return false
	}
	if d.Pitch != nil {
		p, ok := e.Props.Int(model.PropPitch)
		return ok && int(p) == *d.Pitch
	}
	return true
}

// HandleRemoveEvents deletes the first event matching each of the given
// events from a staff of the live document.
func HandleRemoveEvents(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["staff"]
	docs, ok := readEvents(w, r)
	if !ok {
		return
	}

	var staff *score.Staff
	removed := 0
	scheduler.Do(func(h *layout.HLayout) {
		comp := h.Composition()
		if staff = findStaff(comp, key); staff == nil {
			return
		}
		for _, d := range docs {
			for _, e := range staff.Segment.Events() {
				if matches(e, d) {
					staff.Segment.Remove(e)
					removed++
					break
				}
			}
		}
		if removed > 0 {
			if err := comp.BuildTimeline(nil); err != nil {
				logging.HTTP.Printf("could not rebuild bar timeline: %v", err)
			}
		}
	})
	if staff == nil {
		writeError(w, http.StatusNotFound, "no staff "+key)
		return
	}
	if removed > 0 {
		scheduler.StaffChanged(staff)
	}
	writeJSON(w, model.RemoveEventsResponse{Removed: removed})
}

func HandleDocumentLayout(w http.ResponseWriter, r *http.Request) {
	var res model.LayoutResponse
	scheduler.Current(func(h *layout.HLayout) {
		res = h.Response()
	})
	writeJSON(w, res)
}
