package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fixxer/content"
	"fixxer/dashboard"
	"fixxer/events"
	"fixxer/scan"
	"fixxer/session"
	"fixxer/upload"
	"fixxer/view"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	msgNoFiles     = "Please add at least one file before scanning."
	msgScanRunning = "A scan is already running."
	msgScanMissing = "Scan not found. Please start a new scan."
	msgInterrupted = "The scan was interrupted. Please try again."
	msgNoUpload    = "Please choose at least one file to upload."
	msgTooLarge    = "Selected files exceed the 10MB upload limit."
)

// maxMultipartBody caps the picker form when it posts file contents. The
// page script normally sends names and sizes only.
const maxMultipartBody = upload.MaxFileSize + 1<<20

// uploadForm is the picker's name/size listing, one pair per file.
type uploadForm struct {
	Names []string `form:"name" binding:"required,min=1,dive,required"`
	Sizes []int64  `form:"size" binding:"required,min=1"`
}

type ScanRequest struct {
	Files []upload.Ref `json:"files" binding:"required,min=1,dive"`
}

type progressData struct {
	Layout
	Scan scan.Snapshot
}

// scanStatus is a job snapshot plus the view the visitor is now on.
type scanStatus struct {
	scan.Snapshot
	View view.Kind `json:"view"`
}

// ScanHandler runs the upload intake and the simulated scan.
type ScanHandler struct {
	Simulator      *scan.Simulator
	Jobs           *scan.Registry
	Sessions       session.Store
	Events         events.Publisher
	Site           *content.Site
	PublishableKey string
	Logger         *slog.Logger
}

func NewScanHandler(d Deps) *ScanHandler {
	h := &ScanHandler{
		Simulator:      d.Simulator,
		Jobs:           d.Jobs,
		Sessions:       d.Sessions,
		Events:         d.Events,
		Site:           d.Site,
		PublishableKey: d.PublishableKey,
		Logger:         d.Logger,
	}
	d.Simulator.OnComplete = h.scanCompleted
	return h
}

func (h *ScanHandler) layout() Layout {
	return Layout{Site: h.Site, PublishableKey: h.PublishableKey}
}

func (h *ScanHandler) start(files []upload.File) (*scan.Job, error) {
	job, err := h.Simulator.Start(files)
	if err != nil {
		return nil, err
	}
	h.Jobs.Add(job)
	return job, nil
}

// claim hands a finished job's result to the session's view router and
// forgets the job. It reports false when the job ended without a result.
func (h *ScanHandler) claim(sess *session.Session, snap scan.Snapshot) bool {
	h.Jobs.Forget(snap.ID)
	sess.JobID = ""
	sess.Files = nil
	sess.Rejected = nil
	if snap.Result == nil {
		return false
	}
	sess.Router.Complete(*snap.Result)
	sess.Dashboard = dashboard.State{}
	return true
}

func (h *ScanHandler) scanCompleted(job *scan.Job) {
	snap := job.Snapshot()
	if snap.Result == nil {
		return
	}
	h.Events.ScanCompleted(context.Background(), events.ScanCompleted{
		JobID:        snap.ID,
		Files:        len(snap.Files),
		OverallScore: snap.Result.OverallScore,
		Issues:       len(snap.Result.Issues),
		CompletedAt:  time.Now(),
	})
}

// Upload adds picked files to the session. Only file names and sizes are
// looked at.
func (h *ScanHandler) Upload(c *gin.Context) {
	sess := currentSession(c)
	if sess.Scanning() {
		seeOther(c, "/scan/"+sess.JobID)
		return
	}

	var (
		refs   []upload.Ref
		status int
		msg    string
	)
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		refs, status, msg = h.multipartRefs(c)
	} else {
		refs, status, msg = formRefs(c)
	}
	if status != 0 {
		showAlert(c, h.layout(), status, msg, "/#upload")
		return
	}

	files, rejected := upload.Accept(refs)
	sess.Files = append(sess.Files, files...)
	sess.Rejected = rejected
	h.Logger.Debug("files added", "accepted", len(files), "rejected", len(rejected))

	if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
		showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/#upload")
		return
	}
	seeOther(c, "/#upload")
}

func formRefs(c *gin.Context) ([]upload.Ref, int, string) {
	var form uploadForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil || len(form.Names) != len(form.Sizes) {
		return nil, http.StatusBadRequest, msgNoUpload
	}

	refs := make([]upload.Ref, len(form.Names))
	for i, name := range form.Names {
		refs[i] = upload.Ref{Name: name, Size: form.Sizes[i]}
	}
	return refs, 0, ""
}

// multipartRefs serves browsers without script, which post whole files.
func (h *ScanHandler) multipartRefs(c *gin.Context) ([]upload.Ref, int, string) {
	if c.Request.ContentLength > maxMultipartBody {
		return nil, http.StatusRequestEntityTooLarge, msgTooLarge
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartBody)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Logger.Warn("upload body over limit", "limit", maxMultipartBody)
			return nil, http.StatusRequestEntityTooLarge, msgTooLarge
		}
		return nil, http.StatusBadRequest, msgNoUpload
	}
	defer form.RemoveAll()

	headers := form.File["files"]
	refs := make([]upload.Ref, 0, len(headers))
	for _, fh := range headers {
		refs = append(refs, upload.Ref{Name: fh.Filename, Size: fh.Size})
	}
	return refs, 0, ""
}

// RemoveFile drops a pending file.
func (h *ScanHandler) RemoveFile(c *gin.Context) {
	sess := currentSession(c)
	if sess.Scanning() {
		showAlert(c, h.layout(), http.StatusConflict, msgScanRunning, "/scan/"+sess.JobID)
		return
	}

	sess.Files = upload.Remove(sess.Files, c.Param("id"))
	if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
		showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/#upload")
		return
	}
	seeOther(c, "/#upload")
}

// StartScan starts the simulation for the session's files.
func (h *ScanHandler) StartScan(c *gin.Context) {
	sess := currentSession(c)
	if sess.Scanning() {
		seeOther(c, "/scan/"+sess.JobID)
		return
	}

	job, err := h.start(sess.Files)
	if errors.Is(err, scan.ErrNoFiles) {
		showAlert(c, h.layout(), http.StatusBadRequest, msgNoFiles, "/#upload")
		return
	}
	if err != nil {
		showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/#upload")
		return
	}

	sess.JobID = job.ID
	sess.Rejected = nil
	if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
		showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/#upload")
		return
	}
	seeOther(c, "/scan/"+job.ID)
}

// Progress shows a running scan and refreshes itself until the result is
// ready, then switches the visitor to the dashboard.
func (h *ScanHandler) Progress(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")

	job, err := h.Jobs.Get(id)
	if err != nil || sess.JobID != id {
		if sess.Router.Current() == view.Dashboard {
			seeOther(c, "/dashboard")
			return
		}
		if sess.JobID == id {
			sess.JobID = ""
			_ = saveSession(c, h.Sessions, sess, h.Logger)
		}
		showAlert(c, h.layout(), http.StatusNotFound, msgScanMissing, "/#upload")
		return
	}

	snap := job.Snapshot()
	if !snap.Done {
		layout := h.layout()
		layout.Refresh = 1
		c.HTML(http.StatusOK, "progress.html", progressData{Layout: layout, Scan: snap})
		return
	}

	ok := h.claim(sess, snap)
	if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
		showAlert(c, h.layout(), http.StatusInternalServerError, msgInternal, "/")
		return
	}
	if !ok {
		showAlert(c, h.layout(), http.StatusInternalServerError, msgInterrupted, "/#upload")
		return
	}
	seeOther(c, "/dashboard")
}

// StartScanJSON starts a scan from a list of file references.
func (h *ScanHandler) StartScanJSON(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := currentSession(c)
	if sess.Scanning() {
		c.JSON(http.StatusConflict, gin.H{"error": msgScanRunning, "jobId": sess.JobID})
		return
	}

	files, rejected := upload.Accept(req.Files)
	job, err := h.start(files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "rejected": rejected})
		return
	}

	sess.Files = files
	sess.Rejected = rejected
	sess.JobID = job.ID
	if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"jobId":    job.ID,
		"files":    files,
		"rejected": rejected,
	})
}

// ScanStatus returns the job snapshot. Once the job is done its result
// moves into the session and the view becomes the dashboard.
func (h *ScanHandler) ScanStatus(c *gin.Context) {
	sess := currentSession(c)
	id := c.Param("id")

	job, err := h.Jobs.Get(id)
	if err != nil || sess.JobID != id {
		c.JSON(http.StatusNotFound, gin.H{"error": scan.ErrJobNotFound.Error()})
		return
	}

	snap := job.Snapshot()
	if snap.Done {
		ok := h.claim(sess, snap)
		if err := saveSession(c, h.Sessions, sess, h.Logger); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session: " + err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgInterrupted})
			return
		}
	}

	c.JSON(http.StatusOK, scanStatus{Snapshot: snap, View: sess.Router.Current()})
}
