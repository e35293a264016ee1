package i18n

// ZhCNMessages 简体中文消息目录
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// 登录
	"login.title":       "自习室",
	"login.prompt":      "输入昵称进入自习室",
	"login.placeholder": "昵称",
	"login.empty":       "请输入昵称。",

	// 自习室顶部
	"room.welcome":     "欢迎，%s",
	"room.current":     "本次学习",
	"room.total":       "累计专注",
	"room.start":       "开始学习",
	"room.pause":       "暂停",
	"room.end":         "结束本次",
	"room.visual_on":   "陪伴形象：开",
	"room.visual_off":  "陪伴形象：关",
	"room.logged_out":  "已退出登录。",
	"room.not_logged":  "尚未登录，请使用 /login <昵称>。",
	"room.logged_in":   "已登录：%s。",
	"room.session_end": "本次学习已结束，累计专注 %s。",

	// 计时状态
	"timer.status.active": "正在学习中，本次已学习 %s",
	"timer.status.idle":   "当前未开始学习",

	// 待办
	"todo.title":       "学习任务",
	"todo.placeholder": "添加任务",
	"todo.progress":    "已完成 %d/%d",
	"todo.empty":       "还没有任务。",
	"todo.added":       "已添加任务 #%d。",
	"todo.not_found":   "没有任务 #%s。",
	"todo.bad_id":      "任务编号必须是数字：%s",

	// 陪伴台词
	"companion.line.idle": "点击\"开始学习\"，我会陪你进入状态。",
	"companion.line.1":    "先专注 25 分钟，我会一直陪着你。",
	"companion.line.2":    "一点点进步，也是在变强。",
	"companion.line.3":    "按自己的节奏来，你做得很好。",
	"companion.line.4":    "这一轮结束后记得休息一下。",
	"companion.line.5":    "再坚持一步，我们就离目标更近。",

	// 学习搭子
	"companion.title":       "学习搭子",
	"companion.greeting":    "我是你的学习搭子。你可以让我做计划、复盘、背诵抽问，或给你专注提醒。",
	"companion.persona":     "你是一个中文学习陪伴助手，输出简洁、执行导向。优先给明确步骤、时间块安排和鼓励反馈。",
	"companion.status":      "用户学习状态：%s",
	"companion.placeholder": "问问你的学习搭子...",
	"companion.sending":     "思考中...",
	"companion.tip.1":       "帮我规划一个45分钟学习冲刺",
	"companion.tip.2":       "根据我现在状态给一句鼓励",
	"companion.tip.3":       "我容易分心，给我3个专注建议",

	// 接口配置
	"config.title":         "陪伴设置",
	"config.endpoint_base": "API Base URL",
	"config.api_key":       "API Key",
	"config.model":         "模型",
	"config.saved":         "%s 已保存。",
	"config.unknown_field": "未知字段 %q（可用 base、key、model）。",

	// 错误
	"companion.error.config":  "请先配置 API Base URL / API Key / Model。",
	"companion.error.status":  "请求失败(%d) %s",
	"companion.error.empty":   "接口已返回，但没有拿到可用回复。",
	"companion.error.generic": "请求失败，请检查网络和接口配置。",
	"companion.error.busy":    "上一条消息还在等待回复。",
	"companion.fallback":      "我这边连接接口失败了。请检查 API 地址、Key 或跨域设置。",

	// REPL
	"repl.help": "命令：/login <昵称>、/logout、/start、/pause、/end、/status、/todo add <内容>、/todo done <编号>、/todo rm <编号>、/todos、/config <base|key|model> <值>、/tips、/visual、/quit。其他输入会发给学习搭子。",

	"repl.unknown_command": "未知命令 %s，输入 /help 查看帮助。",
	"repl.bye":             "下次见，继续加油！",

	// 快捷键
	"keys.toggle": "ctrl+s 开始/暂停",
	"keys.end":    "ctrl+e 结束",
	"keys.focus":  "tab 切换焦点",
	"keys.visual": "ctrl+v 陪伴形象",
	"keys.logout": "ctrl+l 退出登录",
	"keys.quit":   "ctrl+c 退出",

	"keys.toggle_todo": "空格 完成",
	"keys.tips":        "f1-f3 快捷提问",
	"keys.delete_todo": "del 删除",

	// CLI
	"cli.models.none":  "没有返回模型。",
	"cli.import.done":  "已为 %[2]s 导入 %[1]d 项，跳过 %[3]d 项。",
	"cli.status.owner": "用户：%s",
	"cli.init.done":    "已写入 %s",

	"error.storage": "存储错误：%s",
}
