package screening

import "errors"

var (
	ErrNotFound               = errors.New("批次不存在")
	ErrFileNotFound           = errors.New("文件不存在")
	ErrBatchBusy              = errors.New("该批次正在分析中")
	ErrTooManyFiles           = errors.New("一次最多只能上传 10 个 PDF 文件。")
	ErrJobDescriptionRequired = errors.New("请输入招聘需求。")
	ErrNoFiles                = errors.New("请上传至少一份候选人简历 (PDF)。")
)

// NotPDFMessage is reported when part of an upload was not a PDF.
const NotPDFMessage = "仅支持 PDF 格式的文件。"

// defaultFailure is the file error used when a failure carries no text.
const defaultFailure = "分析失败"
