package code

// ====================================================
// 错误码定义
// ====================================================

const (
	// 0: 成功
	Success = 0

	// 10xxx: 通用错误
	ServerError   = 10001
	ParamError    = 10002
	DatabaseError = 10003
	NetworkError  = 10004
	Unauthorized  = 10007 // 未登录 / Token 无效

	// 20xxx: 配置
	ConfigError = 20001 // 缺少必要配置，流水线不启动

	// 30xxx: 宿主对象
	NotFound        = 30001 // 数据集/资源不存在，或远端数据不可达
	NotAuthorized   = 30002 // 宿主权限校验失败
	KeyError        = 30003 // 资源缺少必需字段
	ValidationError = 30004 // 宿主拒绝了更新

	// 40xxx: 对象存储 & 拉取
	StorageError = 40001 // put/delete/ACL 失败
	FetchError   = 40002 // 非 2xx 或网络异常
)

// ====================================================
// 错误信息映射
// ====================================================

var Msg = map[int]string{
	Success:       "success",
	ServerError:   "internal server error",
	ParamError:    "invalid parameter",
	DatabaseError: "database operation failed",
	NetworkError:  "network error",
	Unauthorized:  "unauthorized",

	ConfigError: "required S3 config options missing",

	NotFound:        "not found",
	NotAuthorized:   "not authorized",
	KeyError:        "missing required field",
	ValidationError: "validation failed",

	StorageError: "object storage operation failed",
	FetchError:   "resource data not found",
}

// GetMsg 获取错误码对应的默认信息
func GetMsg(code int) string {
	msg, ok := Msg[code]
	if ok {
		return msg
	}
	return Msg[ServerError]
}
