package response

// 基础设施类响应（限流、超时、panic 兜底）统一走这个信封。
// 业务端点（注册/管理）有各自固定的 JSON 契约，不套信封。
const (
	CodeOK           = 0
	CodeBadRequest   = 400
	CodeUnauthorized = 401
	CodeNotFound     = 404
	CodeServerError  = 500
)

var codeMsg = map[int]string{
	CodeOK:           "OK",
	CodeBadRequest:   "Bad Request",
	CodeUnauthorized: "Unauthorized",
	CodeNotFound:     "Not Found",
	CodeServerError:  "Internal Server Error",
}

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

func OK(data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: CodeOK, Msg: codeMsg[CodeOK], Data: data}
}

func Error(code int, customMsg string) Resp {
	msg := codeMsg[code]
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{Code: code, Msg: msg, Data: struct{}{}}
}
