// Package monitoring serves the state of tag stores over HTTP while a trace
// is being replayed.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/skewcache/mem/cache/tagging"
	"github.com/sarchlab/skewcache/monitoring/web"
)

// A TagStore is what the monitor can show.
type TagStore interface {
	Name() string
	Stats() tagging.Stats
	ResetStats()
	IndexingPolicy() tagging.IndexingPolicy
	RegenerateBlkAddr(blk *tagging.Block) uint64
}

// Monitor turns a replay into a server that allows external monitoring of
// the tag stores.
type Monitor struct {
	portNumber  int
	openBrowser bool

	// mu serializes the accesses to the tag stores between the replay and
	// the HTTP handlers.
	mu        sync.Mutex
	tagStores []TagStore

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithOpenBrowser sets if the monitor opens the web page once started.
func (m *Monitor) WithOpenBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterTagStore registers a tag store to be monitored.
func (m *Monitor) RegisterTagStore(s TagStore) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tagStores = append(m.tagStores, s)
}

// Guard runs f while no HTTP handler reads the tag stores. Anything that
// changes a registered tag store while the server runs must go through
// Guard.
func (m *Monitor) Guard(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f()
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
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

func (m *Monitor) createRouter() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/list_tagstores", m.listTagStores)
	api.HandleFunc("/tagstore/{name}", m.tagStoreDetails)
	api.HandleFunc("/tagstore/{name}/blocks", m.blockMap)
	api.HandleFunc("/tagstore/{name}/block/{set}/{way}", m.blockDetails)
	api.HandleFunc("/field/{json}", m.listFieldValue)
	api.HandleFunc("/stats/{name}", m.stats)
	api.HandleFunc("/reset_stats/{name}", m.resetStats).
		Methods(http.MethodPost)
	api.HandleFunc("/progress", m.listProgressBars)
	api.HandleFunc("/resource", m.listResources)
	api.HandleFunc("/profile", m.collectProfile)

	// Pages never match /api/, so a method mismatch there stays a 405 and
	// an unknown endpoint stays a 404.
	r.MatcherFunc(isPage).Handler(web.Handler())

	return r
}

func isPage(r *http.Request, _ *mux.RouteMatch) bool {
	return r.URL.Path != "/api" && !strings.HasPrefix(r.URL.Path, "/api/")
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring tag stores with %s\n", url)

	r := m.createRouter()
	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
		}
	}

	return url
}

func (m *Monitor) listTagStores(w http.ResponseWriter, _ *http.Request) {
	m.mu.Lock()
	names := make([]string, 0, len(m.tagStores))
	for _, s := range m.tagStores {
		names = append(names, s.Name())
	}
	m.mu.Unlock()

	sort.Strings(names)

	writeJSON(w, names)
}

func (m *Monitor) tagStoreDetails(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findTagStoreOr404(w, mux.Vars(r)["name"])
	if s == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(s)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	StoreName string `json:"store_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findTagStoreOr404(w, req.StoreName)
	if s == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(s)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type blockRsp struct {
	SetID    int    `json:"set"`
	WayID    int    `json:"way"`
	Valid    bool   `json:"valid"`
	Secure   bool   `json:"secure"`
	Tag      uint64 `json:"tag"`
	Microtag uint8  `json:"microtag"`
	SkewWay  int    `json:"skew_way"`
	Address  uint64 `json:"address"`
}

func (m *Monitor) blockDetails(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	setID, err := strconv.Atoi(vars["set"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	wayID, err := strconv.Atoi(vars["way"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findTagStoreOr404(w, vars["name"])
	if s == nil {
		return
	}

	ip := s.IndexingPolicy()
	if setID < 0 || setID >= ip.NumSets() ||
		wayID < 0 || wayID >= ip.Associativity() {
		http.Error(w, "Block not found", http.StatusNotFound)
		return
	}

	writeJSON(w, newBlockRsp(s, ip.GetEntry(setID, wayID)))
}

func newBlockRsp(s TagStore, blk *tagging.Block) blockRsp {
	rsp := blockRsp{
		SetID:    blk.SetID,
		WayID:    blk.WayID,
		Valid:    blk.IsValid,
		Secure:   blk.IsSecure,
		Tag:      blk.Tag,
		Microtag: blk.Microtag,
		SkewWay:  blk.SkewWay,
	}

	if blk.IsValid {
		rsp.Address = s.RegenerateBlkAddr(blk)
	}

	return rsp
}

type blockMapRsp struct {
	NumSets       int          `json:"num_sets"`
	Associativity int          `json:"associativity"`
	Sets          [][]blockRsp `json:"sets"`
}

// blockMap lists every block of a tag store, set by set.
func (m *Monitor) blockMap(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findTagStoreOr404(w, mux.Vars(r)["name"])
	if s == nil {
		return
	}

	ip := s.IndexingPolicy()
	rsp := blockMapRsp{
		NumSets:       ip.NumSets(),
		Associativity: ip.Associativity(),
		Sets:          make([][]blockRsp, ip.NumSets()),
	}

	for set := range rsp.Sets {
		ways := make([]blockRsp, ip.Associativity())
		for way := range ways {
			ways[way] = newBlockRsp(s, ip.GetEntry(set, way))
		}

		rsp.Sets[set] = ways
	}

	writeJSON(w, rsp)
}

type statsRsp struct {
	tagging.Stats
	HitRate float64 `json:"hit_rate"`
}

func (m *Monitor) stats(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findTagStoreOr404(w, mux.Vars(r)["name"])
	if s == nil {
		return
	}

	stats := s.Stats()
	writeJSON(w, statsRsp{Stats: stats, HitRate: stats.HitRate()})
}

func (m *Monitor) resetStats(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.findTagStoreOr404(w, mux.Vars(r)["name"])
	if s == nil {
		return
	}

	s.ResetStats()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) findTagStoreOr404(
	w http.ResponseWriter,
	name string,
) TagStore {
	for _, s := range m.tagStores {
		if s.Name() == name {
			return s
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Tag store not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
