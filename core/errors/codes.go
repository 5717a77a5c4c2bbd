package errors

// ErrCode 业务错误码类型
type ErrCode int

const (
	// 通用错误 1000-1999
	ErrInvalidParameter ErrCode = 1001 // 参数错误
	ErrInternalError    ErrCode = 1003 // 内部错误
	ErrNotFound         ErrCode = 1004 // 资源未找到
	ErrOperationFailed  ErrCode = 1006 // 操作失败

	// 模型相关 2000-2999
	ErrModelNotFound      ErrCode = 2001 // 模型未找到
	ErrModelConfigInvalid ErrCode = 2002 // 模型配置无效
	ErrEmbeddingFailed    ErrCode = 2003 // Embedding失败
	ErrLLMCallFailed      ErrCode = 2004 // LLM调用失败
	ErrModelNotConfigured ErrCode = 2005 // 模型未配置
	ErrRerankFailed       ErrCode = 2006 // Rerank失败
	ErrModelNotLoaded     ErrCode = 2008 // 模型尚未加载

	// 文档相关 4000-4999
	ErrDocumentNotFound ErrCode = 4001 // 文档未找到
	ErrMetadataInvalid  ErrCode = 4010 // 元数据格式错误
	ErrIndexingFailed   ErrCode = 4009 // 索引失败

	// 向量数据库 5000-5999
	ErrVectorStoreInit     ErrCode = 5001 // 向量库初始化失败
	ErrVectorSearch        ErrCode = 5002 // 向量搜索失败
	ErrVectorInsert        ErrCode = 5003 // 向量插入失败
	ErrVectorDelete        ErrCode = 5004 // 向量删除失败
	ErrVectorStoreNotFound ErrCode = 5005 // 向量库不存在

	// 检索相关 9000-9999
	ErrRetrievalFailed ErrCode = 9001 // 检索失败
)

// HTTPStatusCode 返回错误码对应的HTTP状态码
func (e ErrCode) HTTPStatusCode() int {
	switch {
	case e >= 1001 && e <= 1999:
		// 通用错误
		switch e {
		case ErrInvalidParameter:
			return 400
		case ErrNotFound:
			return 404
		default:
			return 500
		}
	case e >= 2000 && e <= 2999:
		// 模型相关错误
		switch e {
		case ErrModelNotFound:
			return 404
		case ErrModelNotLoaded:
			return 503
		default:
			return 500
		}
	case e >= 4000 && e <= 4999:
		// 文档相关错误
		switch e {
		case ErrDocumentNotFound:
			return 404
		case ErrMetadataInvalid:
			return 400
		default:
			return 500
		}
	default:
		return 500
	}
}
