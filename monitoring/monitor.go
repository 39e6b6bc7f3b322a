// Package monitoring turns a running simulation into a web server that can be
// inspected and driven from a browser.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/pcsim/engine"
	"github.com/sarchlab/pcsim/monitoring/web"
	"github.com/sarchlab/pcsim/process"
	"github.com/sarchlab/pcsim/sim"
	"github.com/sarchlab/pcsim/tracing"
	psprocess "github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Simulator is the part of the engine that the monitor drives.
type Simulator interface {
	AddProcess(t process.Type, name, message string) string
	RemoveProcess(id string) bool
	RemoveAllProcesses()
	InitializeExample()
	Start()
	Step() *engine.Snapshot
	Reset()
	CurrentState() engine.Snapshot
	History() []engine.Snapshot
	Process(id string) (*process.Process, bool)
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	engineLock  sync.Mutex
	engine      Simulator
	counter     *tracing.InstructionCountTracer
	portNumber  int
	openBrowser bool
	idGen       sim.IDGenerator

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		idGen: sim.NewXIDGenerator(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes the monitor open the default browser once the server is
// up.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e Simulator) {
	m.engine = e
}

// RegisterInstructionCounter sets the counter reported by the instructions
// endpoint.
func (m *Monitor) RegisterInstructionCounter(t *tracing.InstructionCountTracer) {
	m.counter = t
}

// Lock blocks the HTTP handlers from touching the engine. Code that steps the
// engine outside the monitor must hold the lock while doing so.
func (m *Monitor) Lock() {
	m.engineLock.Lock()
}

// Unlock releases the lock acquired by Lock.
func (m *Monitor) Unlock() {
	m.engineLock.Unlock()
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGen.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler that serves the monitoring API and the web page.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/state", m.state).Methods(http.MethodGet)
	r.HandleFunc("/api/history", m.history).Methods(http.MethodGet)
	r.HandleFunc("/api/start", m.start).Methods(http.MethodPost)
	r.HandleFunc("/api/step", m.step).Methods(http.MethodPost)
	r.HandleFunc("/api/reset", m.reset).Methods(http.MethodPost)
	r.HandleFunc("/api/example", m.example).Methods(http.MethodPost)
	r.HandleFunc("/api/processes", m.addProcess).Methods(http.MethodPost)
	r.HandleFunc("/api/processes", m.removeAllProcesses).
		Methods(http.MethodDelete)
	r.HandleFunc("/api/processes/{id}", m.removeProcess).
		Methods(http.MethodDelete)
	r.HandleFunc("/api/process/{id}", m.processDetails).
		Methods(http.MethodGet)
	r.HandleFunc("/api/instructions", m.instructions).Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	if m.openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			log.Printf("failed to open browser: %v", err)
		}
	}
}

// StopServer shuts the web server down if it is running.
func (m *Monitor) StopServer() {
	if m.server == nil {
		return
	}

	err := m.server.Close()
	dieOnErr(err)

	m.server = nil
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	m.engineLock.Lock()
	state := m.engine.CurrentState()
	m.engineLock.Unlock()

	writeJSON(w, http.StatusOK, state)
}

func (m *Monitor) history(w http.ResponseWriter, _ *http.Request) {
	m.engineLock.Lock()
	history := m.engine.History()
	m.engineLock.Unlock()

	writeJSON(w, http.StatusOK, history)
}

func (m *Monitor) start(w http.ResponseWriter, _ *http.Request) {
	m.engineLock.Lock()
	m.engine.Start()
	state := m.engine.CurrentState()
	m.engineLock.Unlock()

	writeJSON(w, http.StatusOK, state)
}

func (m *Monitor) step(w http.ResponseWriter, _ *http.Request) {
	m.engineLock.Lock()
	snapshot := m.engine.Step()
	m.engineLock.Unlock()

	if snapshot == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (m *Monitor) reset(w http.ResponseWriter, _ *http.Request) {
	m.engineLock.Lock()
	m.engine.Reset()
	state := m.engine.CurrentState()
	m.engineLock.Unlock()

	m.resetCounter()

	writeJSON(w, http.StatusOK, state)
}

// resetCounter clears the instruction counts. Every handler that resets the
// engine calls it.
func (m *Monitor) resetCounter() {
	if m.counter != nil {
		m.counter.Reset()
	}
}

func (m *Monitor) example(w http.ResponseWriter, _ *http.Request) {
	m.engineLock.Lock()
	m.engine.InitializeExample()
	state := m.engine.CurrentState()
	m.engineLock.Unlock()

	m.resetCounter()

	writeJSON(w, http.StatusOK, state)
}

type addProcessReq struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Message string `json:"message,omitempty"`
}

type addProcessRsp struct {
	ID string `json:"id"`
}

func (m *Monitor) addProcess(w http.ResponseWriter, r *http.Request) {
	req := addProcessReq{}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	t, err := process.ParseType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest,
			errors.New("process name must not be empty"))
		return
	}

	m.engineLock.Lock()
	id := m.engine.AddProcess(t, req.Name, req.Message)
	m.engineLock.Unlock()

	writeJSON(w, http.StatusCreated, addProcessRsp{ID: id})
}

func (m *Monitor) removeProcess(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	m.engineLock.Lock()
	removed := m.engine.RemoveProcess(id)
	m.engineLock.Unlock()

	if !removed {
		writeError(w, http.StatusNotFound,
			fmt.Errorf("process %s not found", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (m *Monitor) removeAllProcesses(w http.ResponseWriter, _ *http.Request) {
	m.engineLock.Lock()
	m.engine.RemoveAllProcesses()
	m.engineLock.Unlock()

	m.resetCounter()

	w.WriteHeader(http.StatusNoContent)
}

func (m *Monitor) processDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	m.engineLock.Lock()
	p, found := m.engine.Process(id)
	m.engineLock.Unlock()

	if !found {
		writeError(w, http.StatusNotFound,
			fmt.Errorf("process %s not found", id))
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(p)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type instructionsRsp struct {
	Total  uint64            `json:"total"`
	Names  []string          `json:"names"`
	Counts map[string]uint64 `json:"counts"`
}

func (m *Monitor) instructions(w http.ResponseWriter, _ *http.Request) {
	if m.counter == nil {
		writeError(w, http.StatusNotFound,
			errors.New("instruction counting is not enabled"))
		return
	}

	writeJSON(w, http.StatusOK, instructionsRsp{
		Total:  m.counter.Total(),
		Names:  m.counter.InstructionNames(),
		Counts: m.counter.Counts(),
	})
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := m.progressBars
	if bars == nil {
		bars = []*ProgressBar{}
	}

	writeJSON(w, http.StatusOK, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := psprocess.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	writeJSON(w, http.StatusOK, rsp)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, http.StatusOK, prof)
}

type errorRsp struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorRsp{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
