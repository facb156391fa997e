package consts

const (
	RemoveBGBaseURL  = "https://api.remove.bg"
	ClipdropBaseURL  = "https://clipdrop-api.co"
	PhotoroomBaseURL = "https://sdk.photoroom.com"
)

type ProviderName string

const (
	RemoveBG  ProviderName = "removebg"
	Clipdrop  ProviderName = "clipdrop"
	Photoroom ProviderName = "photoroom"

	// Basic is the threshold transparency applied when every provider failed.
	Basic ProviderName = "basic"
)

func (p ProviderName) String() string {
	return string(p)
}

type LocalModel string

const (
	U2Net         LocalModel = "u2net"
	U2NetP        LocalModel = "u2netp"
	U2NetHumanSeg LocalModel = "u2net_human_seg"
)

func (m LocalModel) String() string {
	return string(m)
}

type PDFMethod string

const (
	Ghostscript PDFMethod = "ghostscript"
	QPDF        PDFMethod = "qpdf"
)

func (m PDFMethod) String() string {
	return string(m)
}

type TaskStatus string

const (
	TaskStatusQueued  TaskStatus = "queued"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusSucceed TaskStatus = "succeed"
	// TaskStatusCanceled marks a batch whose context ended before every item ran.
	TaskStatusCanceled TaskStatus = "canceled"
)

func (s TaskStatus) String() string {
	return string(s)
}

const (
	EventProviderAttempt = "provider_attempt"
	EventBatchDone       = "batch_done"
	EventPDFAttempt      = "pdf_attempt"
)
