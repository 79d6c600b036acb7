package locale

var catalogs = map[string]map[string]string{
	LangEnUS: {
		// relative time
		"刚刚":           "just now",
		"{minutes}分钟前": "{minutes} min ago",
		"{hours}小时前":   "{hours} h ago",
		"{days}天前":     "{days} d ago",

		// frequency
		"5分钟":              "5 min",
		"10分钟":             "10 min",
		"15分钟":             "15 min",
		"30分钟":             "30 min",
		"1小时":              "1 hour",
		"2小时":              "2 hours",
		"6小时":              "6 hours",
		"12小时":             "12 hours",
		"24小时":             "24 hours",
		"每{frequency}分钟检查": "checked every {frequency} min",

		// trackers
		"加载追踪器列表失败":      "Failed to load trackers",
		"追踪器创建成功":        "Tracker created",
		"创建追踪器":          "Create tracker",
		"创建追踪器失败":        "Failed to create tracker",
		"金币余额不足":         "Not enough coins",
		"更新成功":           "Updated",
		"更新追踪器失败":        "Failed to update tracker",
		"删除成功":           "Deleted",
		"删除追踪器失败":        "Failed to delete tracker",
		"批量删除成功":         "Trackers deleted",
		"批量删除失败":         "Failed to delete trackers",
		"追踪已启动":          "Tracking started",
		"启动追踪失败":         "Failed to start tracking",
		"追踪已停止":          "Tracking stopped",
		"停止追踪失败":         "Failed to stop tracking",
		"批量启动成功":         "Trackers started",
		"批量启动失败":         "Failed to start trackers",
		"批量停止成功":         "Trackers stopped",
		"批量停止失败":         "Failed to stop trackers",
		"链接格式不正确或不支持该平台": "Invalid link or unsupported platform",
		"解析链接失败":         "Failed to parse link",
		"获取追踪状态失败":       "Failed to fetch tracker status",

		// user
		"欢迎使用追影小程序":      "Welcome to Zhuiying",
		"登录成功":           "Logged in",
		"登录失败":           "Login failed",
		"已退出登录":          "Logged out",
		"加载用户信息失败":       "Failed to load profile",
		"更新用户信息失败":       "Failed to update profile",
		"加载交易记录失败":       "Failed to load transactions",
		"加载推送限制信息失败":     "Failed to load push limit",
		"加载广告奖励信息失败":     "Failed to load ad reward",
		"广告加载失败":         "Failed to load ad",
		"请观看完整广告":        "Please watch the whole ad",
		"广告显示失败":         "Failed to show ad",
		"观看广告失败":         "Failed to watch ad",
		"观看广告奖励":         "Ad reward",
		"获得{coins}金币":    "Earned {coins} coins",
		"广告奖励冷却中":        "Ad reward is cooling down",
		"检查订阅状态失败":       "Failed to check subscription",
		"订阅成功":           "Subscribed",
		"需要订阅消息才能及时接收通知": "Subscribe to receive timely notifications",
		"申请订阅权限失败":       "Failed to request subscription",

		// transport
		"请求超时，请检查网络连接":   "Request timed out, check your network",
		"网络连接失败，请检查网络设置": "Connection failed, check your network settings",
		"网络请求失败":         "Request failed",
		"本地数据保存失败":       "Failed to save local data",
	},
}
